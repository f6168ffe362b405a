package console

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/chrisdamba/menuboard/internal/models"
	"golang.org/x/term"
)

// ErrInputClosed is returned by every prompt once the input stream has ended.
var ErrInputClosed = errors.New("input closed")

// Prompter owns the prompt, validate and retry cycle. Every answer is read by a
// short-lived bubbletea program around a text input; plain output is written
// between programs.
type Prompter struct {
	tty *os.File
	src *lineSource
	out io.Writer
	st  styles
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{src: &lineSource{r: in}, out: out, st: newStyles(out)}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = f
	}
	return p
}

func (p *Prompter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompter) Println(args ...interface{}) {
	fmt.Fprintln(p.out, args...)
}

// Ask prints label and returns the answer without surrounding whitespace.
func (p *Prompter) Ask(label string) (string, error) {
	answer, err := p.read(label)
	return strings.TrimSpace(answer), err
}

// AskRaw is Ask without trimming, for free text that is stored verbatim.
func (p *Prompter) AskRaw(label string) (string, error) {
	return p.read(label)
}

func (p *Prompter) read(label string) (string, error) {
	if p.tty == nil && p.src.exhausted() {
		return "", p.src.closeErr()
	}

	var (
		input io.Reader = p.tty
		lines *lineReader
	)
	if p.tty == nil {
		lines = &lineReader{src: p.src}
		input = lines
	}
	program := tea.NewProgram(newPromptModel(label, p.st), tea.WithInput(input), tea.WithOutput(p.out))
	if lines != nil {
		lines.onEOF = func() { program.Send(inputClosedMsg{}) }
	}

	final, err := program.Run()
	if err != nil {
		return "", err
	}
	m := final.(promptModel)
	if m.closed {
		return "", p.src.closeErr()
	}
	return m.answer, nil
}

// askUntil re-prompts until parse accepts the answer, printing each rejection.
func askUntil[T any](p *Prompter, label string, parse func(string) (T, error)) (T, error) {
	for {
		answer, err := p.Ask(label)
		if err != nil {
			var zero T
			return zero, err
		}
		value, err := parse(answer)
		if err == nil {
			return value, nil
		}
		p.Println(p.st.failure.Render("❌ " + err.Error()))
	}
}

var errNotANumber = errors.New("please enter a number")

// Select asks for a 1-based position among n entries. 0 means cancel.
func (p *Prompter) Select(label string, n int) (int, error) {
	return askUntil(p, label, func(s string) (int, error) {
		choice, err := strconv.Atoi(s)
		if err != nil {
			return 0, errNotANumber
		}
		if choice < 0 || choice > n {
			return 0, errors.New("invalid choice, please try again")
		}
		return choice, nil
	})
}

// parsePrice accepts an amount with or without the menu's currency symbol in front.
func parsePrice(s, currency string) (float64, error) {
	s = strings.TrimSpace(s)
	if currency != "" {
		s = strings.TrimSpace(strings.TrimPrefix(s, currency))
	}
	return strconv.ParseFloat(s, 64)
}

// AskPrice keeps asking until the answer is a valid positive price.
func (p *Prompter) AskPrice(label, currency string) (float64, error) {
	return askUntil(p, label, func(s string) (float64, error) {
		price, err := parsePrice(s, currency)
		if err != nil {
			return 0, errors.New("please enter a valid number")
		}
		if err := models.ValidatePrice(price); err != nil {
			return 0, errors.New("price must be positive")
		}
		return price, nil
	})
}

// Confirm reads a y/n answer; anything but y or yes is no.
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Ask(label)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// AskPositions reads a comma separated list of 1-based positions among n options.
// Blank input selects nothing; out of range entries are dropped.
func (p *Prompter) AskPositions(label string, n int) ([]int, error) {
	answer, err := p.Ask(label)
	if err != nil || answer == "" {
		return nil, err
	}
	var positions []int
	for _, part := range strings.Split(answer, ",") {
		pos, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			p.Println("Invalid choices, skipping...")
			return nil, nil
		}
		if pos >= 1 && pos <= n {
			positions = append(positions, pos)
		}
	}
	return positions, nil
}

type inputClosedMsg struct{}

// promptModel is a single question: a label followed by an editable line.
type promptModel struct {
	label  string
	input  textinput.Model
	answer string
	done   bool
	closed bool
}

func newPromptModel(label string, st styles) promptModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 0
	ti.Cursor.Style = st.heading
	ti.Focus()
	return promptModel{label: label, input: ti}
}

func (m promptModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case inputClosedMsg:
		// A last line without a line ending still counts as an answer.
		if value := m.input.Value(); value != "" {
			m.answer = value
		} else {
			m.closed = true
		}
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEnter, tea.KeyCtrlJ:
			m.answer = m.input.Value()
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.closed = true
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m promptModel) View() string {
	if m.done {
		if m.closed {
			return m.label + "\n"
		}
		return m.label + m.answer + "\n"
	}
	return m.label + m.input.View()
}

// lineSource buffers a non-terminal input so consecutive prompts each get exactly
// their own line.
type lineSource struct {
	r      io.Reader
	buf    []byte
	err    error
	lastCR bool
}

func (s *lineSource) exhausted() bool {
	return len(s.buf) == 0 && s.err != nil
}

func (s *lineSource) closeErr() error {
	if s.err != nil && !errors.Is(s.err, io.EOF) {
		return s.err
	}
	return ErrInputClosed
}

// next returns at most max buffered bytes, stopping after the first line ending.
func (s *lineSource) next(max int) ([]byte, bool, error) {
	for len(s.buf) == 0 {
		if s.err != nil {
			return nil, false, s.err
		}
		chunk := make([]byte, 4096)
		n, err := s.r.Read(chunk)
		s.buf = append(s.buf, chunk[:n]...)
		if err != nil {
			s.err = err
		}
		// Drop the \n of a \r\n pair split across reads.
		if s.lastCR && len(s.buf) > 0 && s.buf[0] == '\n' {
			s.buf = s.buf[1:]
		}
		s.lastCR = false
	}

	end, eol := len(s.buf), false
	if i := strings.IndexAny(string(s.buf), "\r\n"); i >= 0 {
		end, eol = i+1, true
		if s.buf[i] == '\r' {
			if i+1 < len(s.buf) && s.buf[i+1] == '\n' {
				end++
			} else if i+1 == len(s.buf) {
				s.lastCR = true
			}
		}
	}
	if end > max {
		end, eol = max, false
	}
	chunk := append([]byte(nil), s.buf[:end]...)
	s.buf = s.buf[end:]
	return chunk, eol, nil
}

// lineReader hands one line of the source to one prompt program and then reports
// EOF, so a program that is shutting down never consumes the next answer.
type lineReader struct {
	src   *lineSource
	done  bool
	onEOF func()
}

func (l *lineReader) Read(p []byte) (int, error) {
	if l.done {
		return 0, io.EOF
	}
	chunk, eol, err := l.src.next(len(p))
	if err != nil {
		l.done = true
		if l.onEOF != nil {
			l.onEOF()
		}
		return 0, io.EOF
	}
	if eol {
		l.done = true
	}
	return copy(p, chunk), nil
}
