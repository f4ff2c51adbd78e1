package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Conceptual-Machines/magda-harmony/internal/config"
	"github.com/Conceptual-Machines/magda-harmony/internal/metrics"
	"github.com/Conceptual-Machines/magda-harmony/internal/spelling"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMaxPitchClasses       = 12
	testMaxFifthsPitchClasses = 8
)

// setupTestRouter creates a minimal test router with just the endpoints we need
func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cloudwatch, err := metrics.NewClient(context.Background(), "test", false)
	require.NoError(t, err)

	speller := spelling.NewEnharmonicSpeller(spelling.StrategySharpsOrFlats)
	cfg := &config.Config{
		Environment:                   "test",
		AuthMode:                      config.AuthModeNone,
		SpellingStrategy:              string(spelling.StrategySharpsOrFlats),
		SpellingMaxPitchClasses:       testMaxPitchClasses,
		SpellingMaxFifthsPitchClasses: testMaxFifthsPitchClasses,
		SpellingBatchWorkers:          3,
		SpellingMaxBatchSize:          4,
	}

	router := gin.New()
	router.GET("/health", NewHealthHandler(speller).HealthCheck)
	router.GET("/api/metrics", NewMetricsHandler("test", cfg).GetMetrics)

	h := NewSpellingHandler(speller, cfg, cloudwatch)
	v1 := router.Group("/api/v1")
	v1.GET("/pitch-classes", h.PitchClasses)
	v1.GET("/spiral", h.Spiral)
	v1.POST("/spell", h.Spell)
	v1.POST("/spell/batch", h.SpellBatch)
	v1.POST("/intervals", h.Interval)
	v1.POST("/chords/spell", h.SpellChord)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func noteNames(notes []NoteResponse) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Name)
	}
	return out
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "sharps_or_flats", resp["spelling"].(map[string]interface{})["default_strategy"])
}

func TestGetMetrics(t *testing.T) {
	router := setupTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp MetricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.NotEmpty(t, resp.System.GoVersion)
	assert.NotEmpty(t, resp.System.MemAlloc)
	assert.Equal(t, "test", resp.API["environment"])
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "1.50s", formatUptime(1500_000_000))
	assert.Equal(t, "2m3.00s", formatUptime(123_000_000_000))
	assert.Equal(t, "1h0m5.00s", formatUptime(3605_000_000_000))
}

func TestHumanUptime(t *testing.T) {
	assert.Equal(t, "1 hour 2 minutes", humanUptime(3723*time.Second))
	assert.Equal(t, "1 minute 30 seconds", humanUptime(90*time.Second))
}

func TestPitchClasses(t *testing.T) {
	router := setupTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/v1/pitch-classes", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		PitchClasses []PitchClassResponse `json:"pitch_classes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.PitchClasses, 12)
	assert.Equal(t, []string{"C", "B♯", "D𝄫"}, resp.PitchClasses[0].Spellings)
	assert.Equal(t, []string{"G♯", "A♭"}, resp.PitchClasses[8].Spellings)
	assert.True(t, resp.PitchClasses[8].BlackKey)
	assert.False(t, resp.PitchClasses[4].BlackKey)
}

func TestSpiral(t *testing.T) {
	router := setupTestRouter(t)
	w := doRequest(t, router, http.MethodGet, "/api/v1/spiral", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Midpoint int           `json:"midpoint"`
		Spiral   []SpiralEntry `json:"spiral"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Spiral, spelling.SpiralLength)
	assert.Equal(t, 17, resp.Midpoint)
	assert.Equal(t, "F𝄫", resp.Spiral[0].Name)
	assert.Equal(t, "D", resp.Spiral[17].Name)
	assert.Equal(t, "B𝄪", resp.Spiral[34].Name)
	assert.Equal(t, "Bx", resp.Spiral[34].ASCII)
	assert.Equal(t, 34, resp.Spiral[34].Index)
}

func TestSpell(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name             string
		body             string
		expectedStrategy spelling.Strategy
		expectedNotes    []string
		expectedDistance int
	}{
		{
			name:             "default strategy prefers flats for Db major",
			body:             `{"pitch_classes":[1,5,8]}`,
			expectedStrategy: spelling.StrategySharpsOrFlats,
			expectedNotes:    []string{"D♭", "F", "A♭"},
			expectedDistance: 8,
		},
		{
			name:             "sharps for E major",
			body:             `{"pitch_classes":[4,8,11],"strategy":"sharps_or_flats"}`,
			expectedStrategy: spelling.StrategySharpsOrFlats,
			expectedNotes:    []string{"E", "G♯", "B"},
			expectedDistance: 8,
		},
		{
			name:             "fifths keeps Eb and Bb near the middle",
			body:             `{"pitch_classes":[3,10],"strategy":"fifths"}`,
			expectedStrategy: spelling.StrategyFifths,
			expectedNotes:    []string{"E♭", "B♭"},
			expectedDistance: 1,
		},
		{
			name:             "C major triad",
			body:             `{"pitch_classes":[0,4,7],"strategy":"FIFTHS"}`,
			expectedStrategy: spelling.StrategyFifths,
			expectedNotes:    []string{"C", "E", "G"},
			expectedDistance: 8,
		},
		{
			name:             "empty set",
			body:             `{"pitch_classes":[]}`,
			expectedStrategy: spelling.StrategySharpsOrFlats,
			expectedNotes:    []string{},
			expectedDistance: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/v1/spell", tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp SpellResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedStrategy, resp.Strategy)
			assert.Equal(t, tt.expectedNotes, noteNames(resp.Notes))
			assert.Equal(t, tt.expectedDistance, resp.FifthsDistance)
			assert.Equal(t, 0, resp.SuboptimalPairs)
		})
	}
}

func TestSpellNoteFields(t *testing.T) {
	router := setupTestRouter(t)
	w := doRequest(t, router, http.MethodPost, "/api/v1/spell", `{"pitch_classes":[1]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SpellResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Notes, 1)
	note := resp.Notes[0]
	assert.Equal(t, "C♯", note.Name)
	assert.Equal(t, "C#", note.ASCII)
	assert.Equal(t, "C", note.Letter)
	assert.Equal(t, "sharp", note.Accidental)
	assert.Equal(t, 1, note.PitchClass)
	assert.Nil(t, note.Octave)
}

func TestSpellRejectsBadInput(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing pitch classes", `{"strategy":"fifths"}`},
		{"malformed json", `{"pitch_classes":[1,2`},
		{"duplicate", `{"pitch_classes":[0,4,0]}`},
		{"out of range", `{"pitch_classes":[0,12]}`},
		{"negative", `{"pitch_classes":[-1]}`},
		{"unknown strategy", `{"pitch_classes":[0],"strategy":"random"}`},
		{"too many", `{"pitch_classes":[0,1,2,3,4,5,6,7,8,9,10,11,0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, router, http.MethodPost, "/api/v1/spell", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestSpellFifthsSizeCap(t *testing.T) {
	router := setupTestRouter(t)
	nine := `[0,1,2,3,4,5,6,7,8]`

	w := doRequest(t, router, http.MethodPost, "/api/v1/spell", `{"pitch_classes":`+nine+`,"strategy":"fifths"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	var errResp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(t, errResp["error"], spelling.ErrTooManyPitchClasses.Error())

	// the cap is for the fifths search only
	w = doRequest(t, router, http.MethodPost, "/api/v1/spell", `{"pitch_classes":`+nine+`,"strategy":"sharps_or_flats"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp SpellResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Notes, 9)

	w = doRequest(t, router, http.MethodPost, "/api/v1/spell", `{"pitch_classes":[0,1,2,3,4,5,6,7],"strategy":"fifths"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(t, router, http.MethodPost, "/api/v1/spell/batch", `{"sets":[{"pitch_classes":`+nine+`}],"strategy":"fifths"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var batch BatchSpellResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &batch))
	require.Len(t, batch.Results, 1)
	assert.Equal(t, 1, batch.Failures)
	assert.Contains(t, batch.Results[0].Error, spelling.ErrTooManyPitchClasses.Error())
}

func TestInterval(t *testing.T) {
	router := setupTestRouter(t)

	tests := []struct {
		from, to  string
		name      string
		display   string
		quality   string
		semitones int
	}{
		{"Bb1", "G1", "m3", "Minor Third", "minor", 3},
		{"G1", "F#0", "m2", "Minor Second", "minor", 1},
		{"F#0", "Cb2", "P4", "Perfect Fourth", "perfect", 5},
		{"Bb1", "F#0", "d4", "Diminished Fourth", "diminished", 4},
		{"F#0", "F#0", "P1", "Perfect Unison", "perfect", 0},
	}

	for _, tt := range tests {
		t.Run(tt.from+"-"+tt.to, func(t *testing.T) {
			body := `{"from":"` + tt.from + `","to":"` + tt.to + `"}`
			w := doRequest(t, router, http.MethodPost, "/api/v1/intervals", body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp IntervalResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.name, resp.Name)
			assert.Equal(t, tt.display, resp.Display)
			assert.Equal(t, tt.quality, resp.Quality)
			assert.Equal(t, tt.semitones, resp.Semitones)
			require.NotNil(t, resp.From.Octave)
		})
	}
}

func TestIntervalRejectsBadNotes(t *testing.T) {
	router := setupTestRouter(t)

	for _, body := range []string{
		`{"from":"H1","to":"G1"}`,
		`{"from":"C9","to":"G1"}`,
		`{"from":"C","to":"` + strings.Repeat("#", 20) + `"}`,
		`{"from":"C"}`,
	} {
		w := doRequest(t, router, http.MethodPost, "/api/v1/intervals", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSpellChord(t *testing.T) {
	router := setupTestRouter(t)

	w := doRequest(t, router, http.MethodPost, "/api/v1/chords/spell", `{"symbol":"Am7"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ChordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 9, resp.Root)
	assert.Equal(t, "minor", resp.Quality)
	assert.Equal(t, []int{9, 0, 4, 7}, resp.PitchClasses)
	assert.Equal(t, []string{"A", "C", "E", "G"}, noteNames(resp.Notes))
	assert.Nil(t, resp.Bass)

	w = doRequest(t, router, http.MethodPost, "/api/v1/chords/spell", `{"symbol":"Db/Ab","strategy":"fifths"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Bass)
	assert.Equal(t, 8, *resp.Bass)
	assert.Equal(t, "fifths", resp.Strategy)
	assert.Equal(t, []string{"A♭", "D♭", "F"}, noteNames(resp.Notes))
}

func TestSpellChordRejectsBadInput(t *testing.T) {
	router := setupTestRouter(t)

	for _, body := range []string{
		`{"symbol":"H"}`,
		`{"symbol":"C/"}`,
		`{"symbol":"C","strategy":"random"}`,
		`{"symbol":"C` + strings.Repeat("7", 40) + `"}`,
		`{}`,
	} {
		w := doRequest(t, router, http.MethodPost, "/api/v1/chords/spell", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(spelling.ErrDuplicatePitchClass))
	assert.Equal(t, http.StatusInternalServerError, statusForError(assert.AnError))
	assert.Equal(t, statusClientClosedRequest, statusForError(context.Canceled))
	assert.Equal(t, statusClientClosedRequest, statusForError(fmt.Errorf("batch: %w", context.Canceled)))
}

func TestRespondErrorClientGone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/spell/batch", nil)

	respondError(c, "SpellBatch: request cancelled", fmt.Errorf("wait: %w", context.Canceled))

	assert.Equal(t, statusClientClosedRequest, w.Code)
	assert.Contains(t, w.Body.String(), context.Canceled.Error())
}

func TestSpellBatch(t *testing.T) {
	router := setupTestRouter(t)

	body := `{"sets":[
		{"pitch_classes":[1,5,8]},
		{"pitch_classes":[0,0]},
		{"pitch_classes":[3,10],"strategy":"fifths"},
		{"pitch_classes":[0],"strategy":"random"}
	]}`
	w := doRequest(t, router, http.MethodPost, "/api/v1/spell/batch", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp BatchSpellResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 4)
	assert.Equal(t, 2, resp.Failures)

	for i, r := range resp.Results {
		assert.Equal(t, i, r.Index)
	}

	require.NotNil(t, resp.Results[0].SpellResponse)
	assert.Equal(t, []string{"D♭", "F", "A♭"}, noteNames(resp.Results[0].Notes))
	assert.Equal(t, spelling.StrategySharpsOrFlats, resp.Results[0].Strategy)

	assert.Nil(t, resp.Results[1].SpellResponse)
	assert.Contains(t, resp.Results[1].Error, "duplicate")

	require.NotNil(t, resp.Results[2].SpellResponse)
	assert.Equal(t, []string{"E♭", "B♭"}, noteNames(resp.Results[2].Notes))
	assert.Equal(t, spelling.StrategyFifths, resp.Results[2].Strategy)

	assert.Contains(t, resp.Results[3].Error, "unknown spelling strategy")
}

func TestSpellBatchRejectsBadInput(t *testing.T) {
	router := setupTestRouter(t)

	tooMany := `{"sets":[` + strings.TrimSuffix(strings.Repeat(`{"pitch_classes":[0]},`, 5), ",") + `]}`
	for _, body := range []string{
		tooMany,
		`{"sets":[{"pitch_classes":[0]}],"strategy":"random"}`,
		`{}`,
	} {
		w := doRequest(t, router, http.MethodPost, "/api/v1/spell/batch", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}
