// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Clone returns a deep copy of the aggregate. The cache stores and returns
// clones so that an optimistic rollback can restore the pre-patch value
// verbatim, untouched by any mutation applied in between.
func (v *SessionView) Clone() *SessionView {
	if v == nil {
		return nil
	}
	out := *v
	out.Wavelength = clonePtr(v.Wavelength)
	out.Items = make([]QwirlItem, len(v.Items))
	for i, item := range v.Items {
		out.Items[i] = item.Clone()
	}
	return &out
}

// Clone returns a deep copy of the item.
func (i QwirlItem) Clone() QwirlItem {
	out := i
	out.Options = append([]string(nil), i.Options...)
	out.UserResponse = i.UserResponse.Clone()
	out.Stats = i.Stats.Clone()
	return out
}

// Clone returns a deep copy of the response, or nil for a nil receiver.
func (r *UserResponse) Clone() *UserResponse {
	if r == nil {
		return nil
	}
	return &UserResponse{
		SelectedAnswer: clonePtr(r.SelectedAnswer),
		Comment:        clonePtr(r.Comment),
	}
}

// Clone returns a deep copy of the stats.
func (s OptionStats) Clone() OptionStats {
	out := OptionStats{TotalResponses: s.TotalResponses}
	if s.Votes != nil {
		out.Votes = make(map[string]int, len(s.Votes))
		for k, v := range s.Votes {
			out.Votes[k] = v
		}
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
