// Package metrics derives aggregate display metrics from raw audit page
// records. The derivation is a pure function of the audit result; nothing
// here talks to the network or mutates shared state.
package metrics
