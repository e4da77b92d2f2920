package dashboard

// ChartKind selects how a renderer draws a ChartDescriptor.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
	ChartLine ChartKind = "line"
)

// Fixed series colors.
const (
	BarColor   = "#4CAF50"
	LineColor  = "#0078D7"
	OtherColor = "#808080"
)

// Series is one data series. Labels, Values and Hover are index aligned;
// Colors is either empty, a single color for every point, or one per point.
type Series struct {
	Name   string    `json:"name"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Hover  []string  `json:"hover,omitempty"`
	Colors []string  `json:"colors,omitempty"`
}

// ChartDescriptor is a renderer independent description of one chart.
type ChartDescriptor struct {
	Kind   ChartKind `json:"kind"`
	Title  string    `json:"title"`
	XTitle string    `json:"x_title,omitempty"`
	YTitle string    `json:"y_title,omitempty"`
	Series Series    `json:"series"`
}

// Len returns the number of points in the chart.
func (c *ChartDescriptor) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Series.Values)
}

// ColorAt returns the color for point i.
func (c *ChartDescriptor) ColorAt(i int) string {
	switch n := len(c.Series.Colors); {
	case n == 0:
		return OtherColor
	case n == 1:
		return c.Series.Colors[0]
	case i < n:
		return c.Series.Colors[i]
	default:
		return OtherColor
	}
}

// Total sums all values.
func (c *ChartDescriptor) Total() float64 {
	var sum float64
	if c == nil {
		return sum
	}
	for _, v := range c.Series.Values {
		sum += v
	}
	return sum
}
