// Package layout computes 2D coordinates and edges for attack trees.
//
// # Algorithm
//
// [Compute] is a pure function of a tree and a [SpacingConfig]. Positions are
// assigned in a depth-first preorder pass and edges are emitted in a second
// depth-first pass once every position is known:
//
//   - The root sits at (0, 0).
//   - Siblings at depth d are spread around their parent's x with a gap of
//     BaseWidth * level.Multiplier * max(1, siblings * level.SiblingFactor),
//     where level is the [LevelSpacing] for depth d. Depth-1 siblings are
//     therefore symmetric about 0.
//   - From depth 2 on, child i is shifted right by i * LateralOffset so that
//     edges of neighbouring branches do not line up exactly.
//   - y = depth * (VerticalBase + depth * VerticalIncrement), so deeper
//     levels get progressively more vertical room.
//
// The same tree and config always produce identical output. A nil root
// yields an empty [Result]; nil children are ignored and a child whose id is
// already on the path from the root is not descended into, so malformed
// input degrades to an overlapping layout instead of failing.
//
// # Configuration
//
// [DefaultSpacing] returns the stock configuration. [LoadSpacingFile] reads
// TOML or YAML files and [SpacingConfig.Validate] checks them.
package layout
