/*
Package domain contains the shared vocabulary of the formtree library.

It defines the node kinds and container modes of a form tree, the interaction
flags aggregated across it, the error-visibility triggers, the lifecycle events
emitted by a tree and the error taxonomy for structural misuse. The package has
no dependencies beyond the standard library so every other package can import it.

# Key Entities

  - Kind: whether a node is a Control (leaf) or a Form (container).
  - Mode: how a Form addresses its children (Group by name, Array by position).
  - Flags: the touched/dirty/submitted/pending/valid snapshot of a node.
  - Trigger: an interaction flag that makes failing errors visible.
  - LifecycleHooks: callbacks for mount, unmount, commit and validation events.
*/
package domain
