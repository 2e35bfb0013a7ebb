// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session drives one viewer through one owner's qwirl.

Controller is the orchestrator. It keeps almost no state of its own: just
the current position, the navigation mode, and the transient comment draft.
Everything else (counts, completion, what the primary button does) is
derived on demand from the cached aggregate, so a background refetch or an
optimistic patch is reflected on the very next read without bookkeeping.

Position is initialized exactly once per controller, at the first item the
viewer has not acted on. Later refetches never move the viewer.

The primary call-to-action is a single descriptor: PrimaryAction returns
what the button says and whether it is enabled, and Advance performs
exactly that action. There is no second code path for the renderer and the
behavior to drift apart on.
*/
package session
