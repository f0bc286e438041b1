/*
Package petal defines the interfaces shared by every part of the document
attestation application, as well as implementations of some of the simpler
components (when interfaces would be too much overhead).

Transactions are processed by a Handler wrapped in a stack of Decorators.
Every call receives a BlockInfo with the framework defined information about
the block being processed (height, time, chain id and a logger). Custom,
optional information that is only consumed within a single extension, such
as the authenticated conditions, travels in the context.Context.
*/
package petal
