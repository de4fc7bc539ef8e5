package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/clearmob/internal/config"
	"github.com/oshokin/clearmob/internal/domain/control"
)

// Field names of the persisted document.
const (
	fieldIsEnabled = "is_enabled"
	fieldTimestamp = "timestamp"
	fieldLastActor = "last_actor"
	fieldHostname  = "hostname"
	fieldUsername  = "username"
)

// Repository defines persistence operations for the control state.
type Repository interface {
	Load(ctx context.Context) (*control.State, error)
	Save(ctx context.Context, state *control.State) error
}

// FileRepository persists the control state to a JSON file on disk.
// The document is a protobuf Struct encoded with protojson, the same
// representation the gRPC status endpoint uses.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*control.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var document structpb.Struct
	if err = protojson.Unmarshal(contents, &document); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return fromStruct(&document)
}

// Save writes the state to disk.
func (r *FileRepository) Save(_ context.Context, state *control.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	document, err := toStruct(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
	}

	data, err := marshalOptions.Marshal(document)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// fromStruct converts the persisted document into the domain State.
func fromStruct(document *structpb.Struct) (*control.State, error) {
	fields := document.GetFields()

	state := &control.State{
		IsEnabled: fields[fieldIsEnabled].GetBoolValue(),
	}

	if raw := fields[fieldTimestamp].GetStringValue(); raw != "" {
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("decode timestamp: %w", err)
		}

		state.Timestamp = ts
	}

	if actor := fields[fieldLastActor].GetStructValue(); actor != nil {
		state.LastActor = &control.Actor{
			Hostname: actor.GetFields()[fieldHostname].GetStringValue(),
			Username: actor.GetFields()[fieldUsername].GetStringValue(),
		}
	}

	return state, nil
}

// toStruct converts the domain State into the persisted document.
func toStruct(state *control.State) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldIsEnabled: state.IsEnabled,
	}

	if !state.Timestamp.IsZero() {
		fields[fieldTimestamp] = state.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	if state.LastActor != nil {
		fields[fieldLastActor] = map[string]any{
			fieldHostname: state.LastActor.Hostname,
			fieldUsername: state.LastActor.Username,
		}
	}

	return structpb.NewStruct(fields)
}
