package task

// Template ids form a closed set. New task kinds are added by
// registering a new handler here, never by interpolating free-form
// instruction strings at runtime.
const (
	TemplateSumOfSales = "sum-of-sales"
	TemplateRound2     = "round2-task"
)

type Template struct {
	ID          string
	Brief       func(seed int64) string
	Checks      []string
	Attachments func() ([]Attachment, error)
}

const sampleSalesCSV = "product,sale\nA,100\nB,50\n"

var templates = map[string]Template{
	TemplateSumOfSales: {
		ID: TemplateSumOfSales,
		Brief: func(seed int64) string {
			return "Publish a single-page site that fetches data.csv from attachments, " +
				"sums its sales column, sets the title to 'Sales Summary " + formatSeed(seed) + "', " +
				"displays the total inside #total-sales, and loads Bootstrap 5 from jsdelivr."
		},
		Checks: []string{
			"Repo has MIT license",
			"README.md is professional",
			"Page displays total inside #total-sales",
		},
		Attachments: func() ([]Attachment, error) {
			a, err := EncodeAttachment("data.csv", "text/csv", []byte(sampleSalesCSV))
			if err != nil {
				return nil, err
			}
			return []Attachment{a}, nil
		},
	},
	TemplateRound2: {
		ID: TemplateRound2,
		Brief: func(seed int64) string {
			return "Round 2: generate a site that visualizes your previous results in a chart"
		},
		Checks: []string{
			"Chart displays total correctly",
			"MIT license",
			"README present",
		},
	},
}

func TemplateByID(id string) (Template, bool) {
	t, ok := templates[id]
	return t, ok
}
