package quiz

import (
	"errors"
)

var (
	// errors
	ErrNoQuestions   = errors.New("a quiz needs at least one question")
	ErrInvalidOption = errors.New("selected option does not exist")
	ErrNoSelection   = errors.New("select an option before advancing")
	ErrFinished      = errors.New("quiz already finished")
	ErrNotFinished   = errors.New("quiz not finished yet")
)

// Question is one quiz item with a precomputed correct-option index.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

const noSelection = -1

// Session is the forward-only quiz state machine:
//
//	Answering(i) -> Select -> Answering(i, selected)
//	             -> Advance (not last) -> Answering(i+1)
//	             -> Advance (last)     -> Completed(score)
//
// Advancing past the last question is the finish transition; it evaluates
// the pending answer like any other advance, so the score it produces is the
// one rendered and the one persisted. No transition goes backward.
type Session struct {
	questions []Question
	idx       int
	selected  int
	correct   int
	done      bool
	persisted bool
}

func NewSession(questions []Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{questions: questions, selected: noSelection}, nil
}

// Question returns the current question and its zero-based index.
func (s *Session) Question() (Question, int) {
	return s.questions[s.idx], s.idx
}

func (s *Session) Len() int { return len(s.questions) }

// Select records the option picked for the current question. Re-selecting
// before advancing replaces the pick.
func (s *Session) Select(option int) error {
	if s.done {
		return ErrFinished
	}
	if option < 0 || option >= len(s.questions[s.idx].Options) {
		return ErrInvalidOption
	}
	s.selected = option
	return nil
}

// Advance evaluates the current selection and moves forward. On the last
// question the same action finishes the quiz; the returned bool reports the
// terminal state.
func (s *Session) Advance() (finished bool, err error) {
	if s.done {
		return true, ErrFinished
	}
	if s.selected == noSelection {
		return false, ErrNoSelection
	}

	if s.selected == s.questions[s.idx].Correct {
		s.correct++
	}
	s.selected = noSelection

	if s.idx == len(s.questions)-1 {
		s.done = true
		return true, nil
	}
	s.idx++
	return false, nil
}

func (s *Session) Finished() bool { return s.done }

// Percent is the single scoring path: 100 * correct / total, for both the
// result screen and the persisted record.
func (s *Session) Percent() int {
	return 100 * s.correct / len(s.questions)
}
