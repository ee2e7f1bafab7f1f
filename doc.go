/*
Package native resolves declared native library imports into symbol addresses at first use.

# License

Source codes are under Apache License Version 2.0.

# Underwater

 1. Call sites declare what they need as [ImportRequest] values: a symbol, the owning [Library],
    and an optional [Condition] such as `windows || linux`.
 2. [Consolidate] groups the requests by library, by condition identity and by symbol name.
    Requests for the same symbol under the same condition share one [Slot].
 3. Each [LibraryGroup] is resolved at most once, lazily, by the first [Slot.Address] call:
    conditions are evaluated once, the library is loaded through its candidate chain,
    symbols are looked up in declaration order.
 4. Retrying another candidate or giving up is decided by the library's handlers only,
    see [Candidates], [Raise] and [ContinueOnMissing].

# Notes

 1. A group that has only conditional imports and no condition holding never loads its library.
 2. A symbol handler returning false abandons the rest of the group. Slots resolved before stay resolved,
    nothing is retried later.
 3. Slots are written once. Reading them after [LibraryGroup.Resolve] needs no further synchronization.

# Samples

	lib := native.NewLibrary("minifb", "libminifb-wayland", "libminifb")
	plan := native.Consolidate([]native.ImportRequest{
		{Symbol: "mfb_open", Library: lib},
		{Symbol: "mfb_open_with_icons", Library: lib, Condition: native.Atom("windows")},
	})
	var open func(title string, w, h uint32) uintptr
	native.MustBind(&open, plan.Slots[0])

See testdata and tests.
*/
package native
