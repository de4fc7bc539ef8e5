// Package scheduler drives the clearing cycle.
//
// A Scheduler owns one clearing.Clock and one clearing.Snapshot and runs two
// tickers against them: a one-second warning ticker that broadcasts the staged
// warnings and a clear ticker, one cycle long, that sweeps the world and
// broadcasts the result. Start, Stop, Reload and both ticker bodies are
// serialized by a single mutex, so at most one ticker of each kind is live.
package scheduler
