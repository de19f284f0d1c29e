// Package progress provides progress indication for one-shot commands.
//
// The spinner runs on stderr while a comparison round drains so that
// stdout stays clean for piping.
package progress

import (
	"fmt"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
)

// setMessage replaces the text shown next to the spinner.
type setMessage string

type spinnerModel struct {
	spinner  spinner.Model
	message  string
	messages chan string
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.nextMessage())
}

// nextMessage blocks on the message channel. A closed channel means
// Stop was called and the program should exit.
func (m spinnerModel) nextMessage() tea.Cmd {
	return func() tea.Msg {
		text, ok := <-m.messages
		if !ok {
			return tea.Quit()
		}
		return setMessage(text)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setMessage:
		m.message = string(msg)
		return m, m.nextMessage()
	case tea.KeyPressMsg:
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// Spinner shows an animated activity indicator on stderr.
type Spinner struct {
	mu       sync.Mutex
	program  *tea.Program
	messages chan string
	done     chan struct{}
	message  string
	running  bool
}

// NewSpinner creates a spinner with the given initial message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		messages: make(chan string, 8),
		done:     make(chan struct{}),
		message:  message,
	}
}

// Start begins the animation. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	model := spinnerModel{
		spinner:  sp,
		message:  s.message,
		messages: s.messages,
	}

	s.program = tea.NewProgram(model, tea.WithoutSignalHandler(), tea.WithOutput(os.Stderr))
	s.running = true

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// SetMessage changes the text shown next to the spinner. Updates are
// dropped rather than blocking when the channel is full.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.message = message
		return
	}

	select {
	case s.messages <- message:
	default:
	}
}

// Stop ends the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	// Closing under the mutex prevents a racing SetMessage from
	// sending on a closed channel.
	close(s.messages)
	s.mu.Unlock()

	if s.program != nil {
		s.program.Quit()
	}

	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(os.Stderr, "\r\033[K")
}
