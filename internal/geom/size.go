package geom

// Size is a width/height pair.
type Size[N Number] struct {
	Width, Height N
}

func NewSize[N Number](w, h N) Size[N] { return Size[N]{Width: w, Height: h} }

func (s Size[N]) HalfWidth() N  { return s.Width / 2 }
func (s Size[N]) HalfHeight() N { return s.Height / 2 }

// IsZero reports whether either dimension is zero.
func (s Size[N]) IsZero() bool { return IsZero(s.Width) || IsZero(s.Height) }

// CastSize converts the numeric type of a size.
func CastSize[N, M Number](s Size[N]) Size[M] {
	return Size[M]{FromFloat[M](float64(s.Width)), FromFloat[M](float64(s.Height))}
}
