// Package chat implements the real-time room messaging core: a registry
// of live connections, a broker mapping room keys to member sets, and a
// router that validates inbound socket events and dispatches them.
//
// The package is transport-agnostic. A connection is anything that
// implements Sender; delivery is fire-and-forget and a failed delivery to
// one member never aborts delivery to the rest. Rooms are created
// implicitly on first join and deleted when their last member leaves.
// All state lives in a single Registry instance, so independent brokers
// can coexist in one process (and in one test run).
package chat
