package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildParams(seed int64) BuildParams {
	return BuildParams{
		TemplateID:    TemplateSumOfSales,
		Seed:          seed,
		Email:         "student@example.com",
		Secret:        "s3cret",
		Round:         1,
		EvaluationURL: "http://localhost:4000/evaluation/notify",
	}
}

func TestLabelDeterminism(t *testing.T) {
	assert.Equal(t, Label(TemplateSumOfSales, 12345), Label(TemplateSumOfSales, 12345))
	assert.Equal(t, "sum-of-sales-12345", Label(TemplateSumOfSales, 12345))
	// Only the first five digits of the seed take part in the label.
	assert.Equal(t, "sum-of-sales-12345", Label(TemplateSumOfSales, 1234567))
	assert.NotEqual(t, Label(TemplateSumOfSales, 12345), Label(TemplateSumOfSales, 54321))
}

func TestBuildTaskLabelStableAcrossCalls(t *testing.T) {
	a, err := Build(buildParams(42))
	assert.NoError(t, err)
	b, err := Build(buildParams(42))
	assert.NoError(t, err)

	assert.Equal(t, a.Task, b.Task)
	assert.Equal(t, a.Brief, b.Brief)
}

func TestBuildNonceFreshPerCall(t *testing.T) {
	a, err := Build(buildParams(42))
	assert.NoError(t, err)
	b, err := Build(buildParams(42))
	assert.NoError(t, err)

	assert.NotEqual(t, a.Nonce, b.Nonce)
}

func TestBuildDerivesSeedWhenUnset(t *testing.T) {
	p, err := Build(buildParams(0))
	assert.NoError(t, err)
	assert.NotEqual(t, "sum-of-sales-0", p.Task)
}

func TestBuildRound1Template(t *testing.T) {
	p, err := Build(buildParams(777))
	assert.NoError(t, err)

	assert.Equal(t, "student@example.com", p.Email)
	assert.Equal(t, "s3cret", p.Secret)
	assert.Equal(t, 1, p.Round)
	assert.Contains(t, p.Brief, "Sales Summary 777")
	assert.Contains(t, p.Brief, "#total-sales")
	assert.Len(t, p.Checks, 3)

	assert.Len(t, p.Attachments, 1)
	assert.Equal(t, "data.csv", p.Attachments[0].Name)
	mediaType, data, err := DecodeDataURI(p.Attachments[0].URL)
	assert.NoError(t, err)
	assert.Equal(t, "text/csv", mediaType)
	assert.Equal(t, "product,sale\nA,100\nB,50\n", string(data))
}

func TestBuildRound2TemplateHasNoAttachments(t *testing.T) {
	p, err := Build(BuildParams{
		TemplateID:    TemplateRound2,
		Seed:          1,
		Email:         "student@example.com",
		Secret:        "shared",
		Round:         2,
		EvaluationURL: "http://localhost:4000/evaluation/notify",
	})
	assert.NoError(t, err)
	assert.Empty(t, p.Attachments)
	assert.Contains(t, p.Brief, "chart")
}

func TestBuildUnknownTemplate(t *testing.T) {
	_, err := Build(BuildParams{TemplateID: "rm -rf", Seed: 1})
	assert.Error(t, err)
}
