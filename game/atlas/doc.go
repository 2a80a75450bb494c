// Package atlas supplies geography data to the route game.
//
// An Atlas wraps a borders dataset, a JSON mapping from country name to the
// list of countries it shares a land border with, and exposes the master
// country list, neighbor lookups, and data-quality auditing.
//
// The border relation is expected to be symmetric (if A borders B, B borders
// A) but nothing in the game enforces it: the engine only follows outgoing
// edges. Check reports asymmetric edges, dangling references, and other
// dataset defects as advisory warnings rather than load errors.
package atlas
