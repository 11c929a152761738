package sorter

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/sortbot/pkg/audit"
	"github.com/ilkoid/sortbot/pkg/config"
	"github.com/ilkoid/sortbot/pkg/events"
	"github.com/ilkoid/sortbot/pkg/prompt"
	"github.com/ilkoid/sortbot/pkg/waste"
)

type fakeDescriber struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
}

func (f *fakeDescriber) Describe(_ context.Context, _ string, p string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	return f.text, f.err
}

type fakeRecorder struct {
	records []audit.Record
	err     error
}

func (f *fakeRecorder) Append(_ context.Context, rec audit.Record) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, rec)
	return int64(len(f.records)), nil
}

func (f *fakeRecorder) Search(context.Context, string) ([]audit.Event, error) {
	out := make([]audit.Event, len(f.records))
	for i, r := range f.records {
		out[len(f.records)-1-i] = audit.Event{ID: int64(i + 1), Record: r}
	}
	return out, nil
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestClassify_Success(t *testing.T) {
	d := &fakeDescriber{text: "A clean paper cup with a plastic lid."}
	rec := &fakeRecorder{}
	em := &recordingEmitter{}
	s := New(d, rec, WithEmitter(em))

	res, err := s.Classify(context.Background(), Request{ImageRef: " cup.png ", Prompt: "Is the lid separate?"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, "cup.png", res.ImageRef)
	assert.Equal(t, waste.Plastic, res.Category)
	assert.Equal(t, "plastic", res.Label)
	assert.Equal(t, waste.ActionPlasticBin, res.Action)
	assert.True(t, res.Saved)
	assert.Equal(t, int64(1), res.ID)

	require.Len(t, d.prompts, 1)
	assert.Equal(t, prompt.DefaultBasePrompt+"\nIs the lid separate?", d.prompts[0])
	assert.Equal(t, d.prompts[0], res.Prompt)

	require.Len(t, rec.records, 1)
	assert.Equal(t, audit.Record{
		ImageRef:    "cup.png",
		Category:    "plastic",
		Description: "A clean paper cup with a plastic lid.",
		Action:      string(waste.ActionPlasticBin),
	}, rec.records[0])

	assert.Equal(t, []events.EventType{
		events.EventDescribing, events.EventClassified, events.EventSaved, events.EventDone,
	}, em.types())
	for _, e := range em.events {
		assert.False(t, e.Timestamp.IsZero())
	}
	done := em.events[3].Data.(events.DoneData)
	assert.True(t, done.Saved)
	assert.Equal(t, res.RequestID, done.RequestID)
}

func TestClassify_DescribeFailure(t *testing.T) {
	d := &fakeDescriber{err: errors.New("provider down")}
	rec := &fakeRecorder{}
	em := &recordingEmitter{}
	s := New(d, rec, WithEmitter(em))

	res, err := s.Classify(context.Background(), Request{ImageRef: "a.png"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "provider down")
	assert.False(t, res.Saved)
	assert.Empty(t, rec.records, "nothing is logged without a description")
	assert.Equal(t, []events.EventType{events.EventDescribing, events.EventError, events.EventDone}, em.types())
}

func TestClassify_AppendFailureKeepsResult(t *testing.T) {
	storeErr := &audit.OpError{Op: "append", Kind: audit.ErrWriteFailure, Err: errors.New("disk full")}
	d := &fakeDescriber{text: "Crushed aluminum can"}
	rec := &fakeRecorder{err: storeErr}
	em := &recordingEmitter{}
	s := New(d, rec, WithEmitter(em))

	res, err := s.Classify(context.Background(), Request{ImageRef: "can.jpg"})
	assert.ErrorIs(t, err, audit.ErrWriteFailure)
	assert.False(t, res.Saved)
	assert.Zero(t, res.ID)
	assert.Equal(t, waste.Metal, res.Category)
	assert.Equal(t, waste.ActionMetalBin, res.Action)
	assert.Equal(t, "Crushed aluminum can", res.Description)
	assert.Equal(t, []events.EventType{
		events.EventDescribing, events.EventClassified, events.EventError, events.EventDone,
	}, em.types())
}

func TestClassify_EmptyImageRef(t *testing.T) {
	d := &fakeDescriber{text: "paper"}
	s := New(d, &fakeRecorder{})

	_, err := s.Classify(context.Background(), Request{ImageRef: "   "})
	assert.ErrorIs(t, err, ErrEmptyImageRef)
	assert.Empty(t, d.prompts)
}

func TestClassify_BadPromptTemplate(t *testing.T) {
	d := &fakeDescriber{text: "paper"}
	pf := &prompt.PromptFile{Messages: []prompt.Message{{Role: prompt.RoleUser, Content: "{{.Nope"}}}
	s := New(d, &fakeRecorder{}, WithPrompt(pf))

	_, err := s.Classify(context.Background(), Request{ImageRef: "a.png"})
	assert.ErrorContains(t, err, "build prompt")
	assert.Empty(t, d.prompts)
}

func TestDecide(t *testing.T) {
	s := New(&fakeDescriber{}, &fakeRecorder{})

	tests := []struct {
		description string
		want        Decision
	}{
		{"A soiled paper plate", Decision{waste.Paper, "paper", waste.ActionGeneralWasteCleaning}},
		{"Clean cardboard box", Decision{waste.Paper, "paper", waste.ActionPaperBin}},
		{"This is general waste", Decision{waste.GeneralWaste, "general waste", waste.ActionManualRemoval}},
		{"Parts cannot be separated", Decision{waste.Uncategorized, "uncategorized", waste.ActionManualRemoval}},
		{"A glass jar", Decision{waste.Uncategorized, "uncategorized", waste.ActionUndeterminable}},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Decide(tt.description))
		})
	}
}

func TestWithExtractor(t *testing.T) {
	x := waste.NewExtractor(map[string][]string{"metal": {"foil"}})
	s := New(&fakeDescriber{}, &fakeRecorder{}, WithExtractor(x))

	got := s.Decide("a crumpled foil tray")
	assert.Equal(t, waste.Metal, got.Category)
	assert.Equal(t, waste.ActionMetalBin, got.Action)
}

func TestResultSummary(t *testing.T) {
	r := Result{Description: "A tin can.", Decision: Decision{Action: waste.ActionMetalBin}}
	assert.Equal(t, "A tin can.\n\nExpected action: Move to the metal bin", r.Summary())
}

// Полный цикл на настоящем журнале: параллельные запросы сериализуются
// и каждый получает свою запись.
func TestClassify_WithStore(t *testing.T) {
	store, err := audit.Open(config.StorageConfig{Path: filepath.Join(t.TempDir(), "log.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx))

	s := New(&fakeDescriber{text: "A plastic bottle"}, store)

	var wg sync.WaitGroup
	ids := make([]int64, 5)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.Classify(ctx, Request{ImageRef: fmt.Sprintf("img-%d.png", i)})
			assert.NoError(t, err)
			ids[i] = res.ID
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, ids)

	found, err := s.Search(ctx, "bottle")
	require.NoError(t, err)
	require.Len(t, found, 5)
	assert.Equal(t, "plastic", found[0].Category)
	assert.Equal(t, string(waste.ActionPlasticBin), found[0].Action)
}
