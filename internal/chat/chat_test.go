package chat

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillroute/internal/assist"
	"github.com/abhisek/skillroute/internal/voice"
)

type fakeAssistant struct {
	mu    sync.Mutex
	calls []string
	title string
}

func (f *fakeAssistant) Ask(_ context.Context, query, pathTitle string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	f.title = pathTitle
	return "answer to " + query
}

type fakeRecognizer struct {
	transcript string
	err        error
}

func (r *fakeRecognizer) Listen(ctx context.Context) (string, error) {
	return r.transcript, r.err
}

type fakeSynth struct {
	mu        sync.Mutex
	spoken    []string
	cancelled int
}

func (s *fakeSynth) Speak(_ context.Context, text string) (<-chan voice.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoken = append(s.spoken, text)
	ch := make(chan voice.Event, 1)
	ch <- voice.Event{Kind: voice.Started}
	return ch, nil
}

func (s *fakeSynth) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled++
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(keyPress(r))
	}
}

func enter(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	return cmd
}

func TestSubmit_AsksWithPathContext(t *testing.T) {
	a := &fakeAssistant{}
	m := New(context.Background(), a, nil, "Go Backend Path")

	typeText(m, "What next?")
	cmd := enter(m)
	require.NotNil(t, cmd)
	assert.True(t, m.Busy())
	assert.Equal(t, []Line{{Role: User, Text: "What next?"}}, m.Lines())

	m.Update(cmd())
	assert.False(t, m.Busy())
	lines := m.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, Line{Role: Bot, Text: "answer to What next?"}, lines[1])
	assert.Equal(t, "Go Backend Path", a.title)
}

func TestSubmit_BlankIsRejectedWithoutCall(t *testing.T) {
	a := &fakeAssistant{}
	m := New(context.Background(), a, nil, "")

	typeText(m, "   ")
	assert.Nil(t, enter(m))
	assert.Equal(t, assist.MsgEmptyQuery, m.Error())
	assert.Empty(t, a.calls)
	assert.Empty(t, m.Lines())
}

func TestSubmit_IgnoredWhileBusy(t *testing.T) {
	a := &fakeAssistant{}
	m := New(context.Background(), a, nil, "")

	typeText(m, "first")
	first := enter(m)
	require.NotNil(t, first)

	typeText(m, "second")
	assert.Nil(t, enter(m), "second submission is ignored while one is outstanding")

	m.Update(first())
	assert.Equal(t, []string{"first"}, a.calls)
}

func TestSubmit_CancelsPlayback(t *testing.T) {
	syn := &fakeSynth{}
	coord := voice.NewCoordinator(nil, syn)
	a := &fakeAssistant{}
	m := New(context.Background(), a, coord, "")

	typeText(m, "q1")
	m.Update(enter(m)())

	_, cmd := m.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	require.True(t, coord.Speaking())
	assert.Equal(t, []string{"answer to q1"}, syn.spoken)

	typeText(m, "q2")
	require.NotNil(t, enter(m))
	assert.False(t, coord.Speaking())
	assert.Equal(t, 1, syn.cancelled)
}

func TestVoice_TranscriptFillsInput(t *testing.T) {
	coord := voice.NewCoordinator(&fakeRecognizer{transcript: "  how do I learn k8s  "}, nil)
	m := New(context.Background(), &fakeAssistant{}, coord, "")

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Equal(t, "listening...", m.status())

	m.Update(cmd())
	assert.Equal(t, "how do I learn k8s", m.input.Value())
	assert.Empty(t, m.status())
}

func TestVoice_RecognitionErrorMessage(t *testing.T) {
	coord := voice.NewCoordinator(&fakeRecognizer{err: &voice.RecognitionError{Code: voice.NoSpeech}}, nil)
	m := New(context.Background(), &fakeAssistant{}, coord, "")

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	m.Update(cmd())
	assert.Equal(t, "No speech was detected. Please try again.", m.Error())
}

func TestVoice_Unavailable(t *testing.T) {
	m := New(context.Background(), &fakeAssistant{}, nil, "")

	m.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	assert.Equal(t, voice.ErrRecognitionUnavailable.Error(), m.Error())

	m.Update(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl})
	assert.Equal(t, voice.ErrSynthesisUnavailable.Error(), m.Error())
}

func TestView(t *testing.T) {
	m := New(context.Background(), &fakeAssistant{}, nil, "SRE Path")
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	typeText(m, "hello")
	m.Update(enter(m)())

	content := m.render()
	assert.Contains(t, content, "SkillRoute")
	assert.Contains(t, content, "Context: SRE Path")
	assert.Contains(t, content, "answer to hello")
}

func TestView_TooSmall(t *testing.T) {
	m := New(context.Background(), &fakeAssistant{}, nil, "")
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.True(t, strings.Contains(m.render(), "Terminal too small"))
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), &fakeAssistant{}, nil, "")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}
