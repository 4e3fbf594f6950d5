package listing

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	Name    string
	Email   string
	Created time.Time
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

var testRows = []row{
	{"Asha Motors", "asha@example.com", day("2026-01-10")},
	{"Bharat Traders", "bharat@example.com", day("2026-01-15")},
	{"Chitra Cars", "chitra@example.com", day("2026-02-01")},
	{"Deepak Auto", "deepak@ashagroup.in", day("2026-02-20")},
}

func searchFields(r row) []string { return []string{r.Name, r.Email} }
func createdAt(r row) time.Time   { return r.Created }

func parseTestQuery(t *testing.T, rawQuery string) Query {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)

	q, err := ParseQuery(c)
	require.NoError(t, err)
	return q
}

func TestParseQuery_Defaults(t *testing.T) {
	q := parseTestQuery(t, "")

	assert.Equal(t, "", q.Search)
	assert.Equal(t, "desc", q.SortOrder)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultLimit, q.Limit)
	assert.Nil(t, q.DateFrom)
	assert.Nil(t, q.DateTo)
}

func TestParseQuery_Invalid(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, raw := range []string{
		"page=0",
		"page=abc",
		"limit=-5",
		"sort_order=sideways",
		"date_from=15-01-2026",
		"date_to=2026-13-40",
	} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/?"+raw, nil)

		_, err := ParseQuery(c)
		assert.Error(t, err, "expected %q to be rejected", raw)
	}
}

func TestParseQuery_LimitCap(t *testing.T) {
	q := parseTestQuery(t, "limit=10000")
	assert.Equal(t, MaxLimit, q.Limit)
}

func TestFilter_Search(t *testing.T) {
	q := parseTestQuery(t, "search=ASHA")

	got := Filter(testRows, q, searchFields, createdAt)

	// Matches the name "Asha Motors" and the email domain "ashagroup.in"
	require.Len(t, got, 2)
	assert.Equal(t, "Asha Motors", got[0].Name)
	assert.Equal(t, "Deepak Auto", got[1].Name)
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	q := parseTestQuery(t, "date_from=2026-01-15&date_to=2026-02-01")

	got := Filter(testRows, q, searchFields, createdAt)

	// Both boundary days are included
	require.Len(t, got, 2)
	assert.Equal(t, "Bharat Traders", got[0].Name)
	assert.Equal(t, "Chitra Cars", got[1].Name)
}

func TestFilter_EmptySearchMatchesAll(t *testing.T) {
	q := parseTestQuery(t, "")
	got := Filter(testRows, q, searchFields, createdAt)
	assert.Len(t, got, len(testRows))
}

func TestSort(t *testing.T) {
	less := map[string]func(a, b row) bool{
		"name":       func(a, b row) bool { return a.Name < b.Name },
		"created_at": func(a, b row) bool { return a.Created.Before(b.Created) },
	}

	t.Run("ascending", func(t *testing.T) {
		items := append([]row(nil), testRows...)
		q := parseTestQuery(t, "sort_field=name&sort_order=asc")

		Sort(items, q, less)
		assert.Equal(t, "Asha Motors", items[0].Name)
		assert.Equal(t, "Deepak Auto", items[3].Name)
	})

	t.Run("descending", func(t *testing.T) {
		items := append([]row(nil), testRows...)
		q := parseTestQuery(t, "sort_field=created_at&sort_order=desc")

		Sort(items, q, less)
		assert.Equal(t, "Deepak Auto", items[0].Name)
		assert.Equal(t, "Asha Motors", items[3].Name)
	})

	t.Run("unknown field keeps order", func(t *testing.T) {
		items := append([]row(nil), testRows...)
		q := parseTestQuery(t, "sort_field=bogus")

		Sort(items, q, less)
		assert.Equal(t, testRows, items)
	})
}

func TestPaginate(t *testing.T) {
	q := Query{Page: 2, Limit: 3}

	items := []row{
		{Name: "a"}, {Name: "b"}, {Name: "c"},
		{Name: "d"}, {Name: "e"},
	}

	page, meta := Paginate(items, q)

	require.Len(t, page, 2)
	assert.Equal(t, "d", page[0].Name)
	assert.Equal(t, 5, meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestPaginate_PastEnd(t *testing.T) {
	q := Query{Page: 9, Limit: 30}

	page, meta := Paginate(testRows, q)

	assert.Empty(t, page)
	assert.Equal(t, len(testRows), meta.Total)
	assert.Equal(t, 1, meta.TotalPages)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer

	err := WriteCSV(&buf, []string{"name", "email"}, [][]string{
		{"Asha Motors", "asha@example.com"},
		{"with, comma", "quote\"inside"},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "name,email\n")
	assert.Contains(t, out, `"with, comma"`)
}

func TestCollectJSONKeys(t *testing.T) {
	keys := CollectJSONKeys(
		[]byte(`{"roll":"A1","lot_number":42}`),
		[]byte(`{"install_area":"full","roll":"B2"}`),
		[]byte(`["not","an","object"]`),
		nil,
	)

	assert.Equal(t, []string{"install_area", "lot_number", "roll"}, keys)
}

func TestCollectJSONKeys_Empty(t *testing.T) {
	assert.Empty(t, CollectJSONKeys())
	assert.Empty(t, CollectJSONKeys(nil, []byte(`"just a string"`)))
}

func TestJSONField(t *testing.T) {
	raw := []byte(`{"roll":"A1","lot_number":42,"photos":["a.jpg","b.jpg"]}`)

	assert.Equal(t, "A1", JSONField(raw, "roll"))
	assert.Equal(t, "42", JSONField(raw, "lot_number"))
	assert.Equal(t, `["a.jpg","b.jpg"]`, JSONField(raw, "photos"))
	assert.Equal(t, "", JSONField(raw, "missing"))
	assert.Equal(t, "", JSONField(nil, "roll"))
	assert.Equal(t, "", JSONField([]byte(`["not","an","object"]`), "roll"))
}
