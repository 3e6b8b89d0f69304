package flint

// Cost gives the weight of a graph arc. Implementations are only queried for
// arcs present in the variable's envelope, so no absent-edge sentinel is
// needed.
type Cost func(i, j int) int
