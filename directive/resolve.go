package directive

// Resolve computes the angle of every page in [0, pageCount).
//
// A non-zero All angle covers the whole range and Even/Odd are ignored.
// Otherwise non-zero Even/Odd angles apply by 1-based page position.
// The single page, if any, is written last and always wins.
func Resolve(pageCount int, s Set) Rotations {
	rot := make(Rotations, pageCount)

	for i := range rot {
		if !s.Range.Contains(i) {
			continue
		}
		switch {
		case s.All.Angle != 0:
			rot[i] = s.All.Angle
		case isEvenPosition(i):
			if s.Even.Angle != 0 {
				rot[i] = s.Even.Angle
			}
		default:
			if s.Odd.Angle != 0 {
				rot[i] = s.Odd.Angle
			}
		}
	}

	if s.Single != nil && s.Single.Index >= 0 && s.Single.Index < pageCount {
		rot[s.Single.Index] = s.Single.Angle
	}
	return rot
}

// ResolveBatch applies clauses in order over the whole document. Each clause
// overwrites every page, zero angles included, so the last clause wins.
func ResolveBatch(pageCount int, clauses []BatchClause) Rotations {
	rot := make(Rotations, pageCount)
	for _, c := range clauses {
		for i := range rot {
			if isEvenPosition(i) {
				rot[i] = c.Even
			} else {
				rot[i] = c.Odd
			}
		}
	}
	return rot
}
