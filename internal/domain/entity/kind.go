package entity

import (
	"errors"
	"fmt"
	"slices"
)

// Kind identifies a class of world entities by its upper-case literal name.
type Kind string

// Catalogued entity kinds.
const (
	Zombie          Kind = "ZOMBIE"
	ZombieVillager  Kind = "ZOMBIE_VILLAGER"
	Husk            Kind = "HUSK"
	Drowned         Kind = "DROWNED"
	Skeleton        Kind = "SKELETON"
	Stray           Kind = "STRAY"
	WitherSkeleton  Kind = "WITHER_SKELETON"
	Creeper         Kind = "CREEPER"
	Spider          Kind = "SPIDER"
	CaveSpider      Kind = "CAVE_SPIDER"
	Enderman        Kind = "ENDERMAN"
	Endermite       Kind = "ENDERMITE"
	Silverfish      Kind = "SILVERFISH"
	Slime           Kind = "SLIME"
	MagmaCube       Kind = "MAGMA_CUBE"
	Witch           Kind = "WITCH"
	Blaze           Kind = "BLAZE"
	Ghast           Kind = "GHAST"
	Phantom         Kind = "PHANTOM"
	Pillager        Kind = "PILLAGER"
	Vindicator      Kind = "VINDICATOR"
	Evoker          Kind = "EVOKER"
	Ravager         Kind = "RAVAGER"
	Guardian        Kind = "GUARDIAN"
	Piglin          Kind = "PIGLIN"
	Hoglin          Kind = "HOGLIN"
	Cow             Kind = "COW"
	Pig             Kind = "PIG"
	Sheep           Kind = "SHEEP"
	Chicken         Kind = "CHICKEN"
	Horse           Kind = "HORSE"
	Donkey          Kind = "DONKEY"
	Llama           Kind = "LLAMA"
	Rabbit          Kind = "RABBIT"
	Wolf            Kind = "WOLF"
	Cat             Kind = "CAT"
	Fox             Kind = "FOX"
	Bee             Kind = "BEE"
	Squid           Kind = "SQUID"
	Bat             Kind = "BAT"
	Villager        Kind = "VILLAGER"
	WanderingTrader Kind = "WANDERING_TRADER"
	IronGolem       Kind = "IRON_GOLEM"
	Snowman         Kind = "SNOWMAN"
	ArmorStand      Kind = "ARMOR_STAND"
	Player          Kind = "PLAYER"

	DroppedItem   Kind = "DROPPED_ITEM"
	ExperienceOrb Kind = "EXPERIENCE_ORB"
	Arrow         Kind = "ARROW"
	Snowball      Kind = "SNOWBALL"
	ItemFrame     Kind = "ITEM_FRAME"
	Painting      Kind = "PAINTING"
	Boat          Kind = "BOAT"
	Minecart      Kind = "MINECART"
	PrimedTNT     Kind = "PRIMED_TNT"
	FallingBlock  Kind = "FALLING_BLOCK"
	Firework      Kind = "FIREWORK"
)

// ErrUnknownKind is returned when a name does not match any catalogued kind.
var ErrUnknownKind = errors.New("unknown entity kind")

// classification describes static properties of a kind.
type classification struct {
	// alive marks living, non-inert kinds.
	alive bool
	// protected kinds are never removed by a sweep.
	protected bool
}

//nolint:gochecknoglobals // Closed, read-only catalog.
var catalog = map[Kind]classification{
	Zombie:          {alive: true},
	ZombieVillager:  {alive: true},
	Husk:            {alive: true},
	Drowned:         {alive: true},
	Skeleton:        {alive: true},
	Stray:           {alive: true},
	WitherSkeleton:  {alive: true},
	Creeper:         {alive: true},
	Spider:          {alive: true},
	CaveSpider:      {alive: true},
	Enderman:        {alive: true},
	Endermite:       {alive: true},
	Silverfish:      {alive: true},
	Slime:           {alive: true},
	MagmaCube:       {alive: true},
	Witch:           {alive: true},
	Blaze:           {alive: true},
	Ghast:           {alive: true},
	Phantom:         {alive: true},
	Pillager:        {alive: true},
	Vindicator:      {alive: true},
	Evoker:          {alive: true},
	Ravager:         {alive: true},
	Guardian:        {alive: true},
	Piglin:          {alive: true},
	Hoglin:          {alive: true},
	Cow:             {alive: true},
	Pig:             {alive: true},
	Sheep:           {alive: true},
	Chicken:         {alive: true},
	Horse:           {alive: true},
	Donkey:          {alive: true},
	Llama:           {alive: true},
	Rabbit:          {alive: true},
	Wolf:            {alive: true},
	Cat:             {alive: true},
	Fox:             {alive: true},
	Bee:             {alive: true},
	Squid:           {alive: true},
	Bat:             {alive: true},
	Villager:        {alive: true},
	WanderingTrader: {alive: true},
	IronGolem:       {alive: true},
	Snowman:         {alive: true},
	ArmorStand:      {alive: true},
	Player:          {alive: true, protected: true},
	DroppedItem:     {},
	ExperienceOrb:   {},
	Arrow:           {},
	Snowball:        {},
	ItemFrame:       {},
	Painting:        {},
	Boat:            {},
	Minecart:        {},
	PrimedTNT:       {},
	FallingBlock:    {},
	Firework:        {},
}

// ParseKind resolves an exact literal name into a catalogued Kind.
func ParseKind(name string) (Kind, error) {
	kind := Kind(name)
	if _, ok := catalog[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}

	return kind, nil
}

// Kinds returns every catalogued kind in lexical order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(catalog))
	for kind := range catalog {
		kinds = append(kinds, kind)
	}

	slices.Sort(kinds)

	return kinds
}

// IsAlive reports whether the kind is a living, non-inert entity.
func (k Kind) IsAlive() bool {
	return catalog[k].alive
}

// IsProtected reports whether entities of this kind must never be swept.
func (k Kind) IsProtected() bool {
	return catalog[k].protected
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}
