package db

import (
	"testing"

	"github.com/jonathan/talent-pool/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringArray_ScanAndValue(t *testing.T) {
	var a StringArray
	require.NoError(t, a.Scan([]byte(`["go","sql"]`)))
	assert.Equal(t, StringArray{"go", "sql"}, a)

	require.NoError(t, a.Scan(`["rust"]`))
	assert.Equal(t, StringArray{"rust"}, a)

	require.NoError(t, a.Scan(nil))
	assert.Empty(t, a)

	assert.Error(t, a.Scan(42))

	v, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestProjectList_ScanAndValue(t *testing.T) {
	var p ProjectList
	require.NoError(t, p.Scan([]byte(`[{"title":"API","tags":["go","grpc"],"link":"https://x"}]`)))
	require.Len(t, p, 1)
	assert.Equal(t, "API", p[0].Title)
	assert.Equal(t, []string{"go", "grpc"}, p[0].Tags)

	v, err := ProjectList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)
}

func TestBreakdown_ScanAndValue(t *testing.T) {
	var b Breakdown
	require.NoError(t, b.Scan(nil))
	assert.False(t, b.Valid)
	assert.Nil(t, b.Ptr())

	v, err := b.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, b.Scan([]byte(`{"projects":4,"experience":6,"skills":5,"coding":0,"achievements":2,"completeness":1,"recency":2,"total":20}`)))
	require.True(t, b.Valid)
	assert.Equal(t, types.ScoreBreakdown{Projects: 4, Experience: 6, Skills: 5, Achievements: 2, Completeness: 1, Recency: 2, Total: 20}, *b.Ptr())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c\\d`, escapeLike(`c\d`))
}
