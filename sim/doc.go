// Package sim implements a frame-by-frame microsimulator of a shared-ride
// tricycle fleet serving passengers over a road network.
//
// The simulator is single-threaded and deterministic: given the same seed
// and configuration it produces byte-identical event logs. The tick loop,
// per-vehicle status machine, per-passenger claim/load/drop lifecycle, the
// proximity-based detection/pickup/drop protocol, the on-board scheduler
// and the terminal queueing discipline all live in this package. Routing,
// scenario generation, result persistence and HTTP serving are external
// collaborators referenced only through the RoutingClient interface.
package sim
