package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aweston/flagchase/internal/model"
	"github.com/aweston/flagchase/internal/storage"
)

// Storage is an in-memory implementation of the store interface.
// A single mutex stands in for the transactional row locks the
// postgres implementation uses, so the atomic operations keep the
// same observable semantics under concurrent callers.
type Storage struct {
	mu sync.RWMutex

	users        map[model.UserID]*model.User
	emailIndex   map[string]model.UserID
	runs         map[model.RunID]*model.Run
	counters     map[model.RunID]int
	pinIndex     map[string]model.RunID
	flags        map[model.FlagID]*model.Flag
	questions    map[model.QuestionID]*model.Question
	options      map[model.OptionID]*model.QuestionOption
	histories    map[model.HistoryID]*model.History
	historyFlags map[model.HistoryFlagID]*model.HistoryFlag
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:        make(map[model.UserID]*model.User),
		emailIndex:   make(map[string]model.UserID),
		runs:         make(map[model.RunID]*model.Run),
		counters:     make(map[model.RunID]int),
		pinIndex:     make(map[string]model.RunID),
		flags:        make(map[model.FlagID]*model.Flag),
		questions:    make(map[model.QuestionID]*model.Question),
		options:      make(map[model.OptionID]*model.QuestionOption),
		histories:    make(map[model.HistoryID]*model.History),
		historyFlags: make(map[model.HistoryFlagID]*model.HistoryFlag),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// User operations

func (s *Storage) SaveUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.users[u.ID] = &u
	s.emailIndex[u.Email] = u.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[email]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// Run operations

func (s *Storage) CreateRun(ctx context.Context, run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.Pin != nil {
		if _, taken := s.pinIndex[*run.Pin]; taken {
			return model.ErrPinTaken
		}
		s.pinIndex[*run.Pin] = run.ID
	}
	r := *run
	s.runs[r.ID] = &r
	s.counters[r.ID] = 0
	return nil
}

func (s *Storage) GetRun(ctx context.Context, id model.RunID) (*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRunLocked(id)
}

// getRunLocked returns a copy of the run with flags and questions
// attached. Callers must hold at least a read lock.
func (s *Storage) getRunLocked(id model.RunID) (*model.Run, error) {
	run, ok := s.runs[id]
	if !ok {
		return nil, model.ErrRunNotFound
	}
	r := *run
	r.Flags = s.flagsForRunLocked(id)
	r.Questions = s.questionsForRunLocked(id)
	return &r, nil
}

func (s *Storage) GetRunByPin(ctx context.Context, pin string) (*model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.pinIndex[pin]
	if !ok {
		return nil, model.ErrRunNotFound
	}
	return s.getRunLocked(id)
}

func (s *Storage) UpdateRun(ctx context.Context, run *model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.runs[run.ID]
	if !ok {
		return model.ErrRunNotFound
	}
	if existing.Pin != nil && (run.Pin == nil || *run.Pin != *existing.Pin) {
		delete(s.pinIndex, *existing.Pin)
	}
	if run.Pin != nil {
		if owner, taken := s.pinIndex[*run.Pin]; taken && owner != run.ID {
			return model.ErrPinTaken
		}
		s.pinIndex[*run.Pin] = run.ID
	}
	r := *run
	r.Flags = nil
	r.Questions = nil
	s.runs[r.ID] = &r
	return nil
}

func (s *Storage) DeleteRun(ctx context.Context, id model.RunID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return model.ErrRunNotFound
	}
	if run.Pin != nil {
		delete(s.pinIndex, *run.Pin)
	}
	delete(s.runs, id)
	delete(s.counters, id)

	// Cascade to flags, questions, options and histories
	for fid, f := range s.flags {
		if f.RunID == id {
			delete(s.flags, fid)
		}
	}
	for qid, q := range s.questions {
		if q.RunID == id {
			for oid, o := range s.options {
				if o.QuestionID == qid {
					delete(s.options, oid)
				}
			}
			delete(s.questions, qid)
		}
	}
	for hid, h := range s.histories {
		if h.RunID == id {
			for hfid, hf := range s.historyFlags {
				if hf.HistoryID == hid {
					delete(s.historyFlags, hfid)
				}
			}
			delete(s.histories, hid)
		}
	}
	return nil
}

func (s *Storage) AssignPin(ctx context.Context, id model.RunID, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[id]
	if !ok {
		return model.ErrRunNotFound
	}
	if owner, taken := s.pinIndex[pin]; taken && owner != id {
		return model.ErrPinTaken
	}
	if run.Pin != nil {
		delete(s.pinIndex, *run.Pin)
	}
	p := pin
	run.Pin = &p
	s.pinIndex[pin] = id
	return nil
}

// Flag operations

func (s *Storage) CreateFlags(ctx context.Context, runID model.RunID, flags []*model.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return model.ErrRunNotFound
	}
	next := s.counters[runID] + 1
	for i, flag := range flags {
		flag.RunID = runID
		flag.FlagNumber = next + i
		f := *flag
		s.flags[f.ID] = &f
	}
	s.counters[runID] += len(flags)
	return nil
}

func (s *Storage) GetFlag(ctx context.Context, id model.FlagID) (*model.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flag, ok := s.flags[id]
	if !ok {
		return nil, model.ErrFlagNotFound
	}
	f := *flag
	return &f, nil
}

func (s *Storage) ListFlags(ctx context.Context, runID model.RunID) ([]*model.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.runs[runID]; !ok {
		return nil, model.ErrRunNotFound
	}
	return s.flagsForRunLocked(runID), nil
}

func (s *Storage) flagsForRunLocked(runID model.RunID) []*model.Flag {
	flags := make([]*model.Flag, 0)
	for _, flag := range s.flags {
		if flag.RunID == runID {
			f := *flag
			flags = append(flags, &f)
		}
	}
	sort.Slice(flags, func(i, j int) bool {
		return flags[i].FlagNumber < flags[j].FlagNumber
	})
	return flags
}

func (s *Storage) UpdateFlag(ctx context.Context, flag *model.Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.flags[flag.ID]
	if !ok {
		return model.ErrFlagNotFound
	}
	// Flag numbers are immutable once assigned
	existing.Latitude = flag.Latitude
	existing.Longitude = flag.Longitude
	flag.FlagNumber = existing.FlagNumber
	flag.RunID = existing.RunID
	return nil
}

func (s *Storage) DeleteFlags(ctx context.Context, runID model.RunID, ids []model.FlagID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		flag, ok := s.flags[id]
		if !ok || flag.RunID != runID {
			continue
		}
		delete(s.flags, id)
		deleted++
	}
	return deleted, nil
}

// Question operations

func (s *Storage) SaveQuestion(ctx context.Context, question *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[question.RunID]; !ok {
		return model.ErrRunNotFound
	}
	q := *question
	q.Options = nil
	s.questions[q.ID] = &q
	return nil
}

func (s *Storage) GetQuestion(ctx context.Context, id model.QuestionID) (*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return nil, model.ErrQuestionNotFound
	}
	q := *question
	q.Options = s.optionsForQuestionLocked(id)
	return &q, nil
}

func (s *Storage) ListQuestions(ctx context.Context, runID model.RunID) ([]*model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.runs[runID]; !ok {
		return nil, model.ErrRunNotFound
	}
	return s.questionsForRunLocked(runID), nil
}

func (s *Storage) questionsForRunLocked(runID model.RunID) []*model.Question {
	questions := make([]*model.Question, 0)
	for _, question := range s.questions {
		if question.RunID == runID {
			q := *question
			q.Options = s.optionsForQuestionLocked(q.ID)
			questions = append(questions, &q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].ID < questions[j].ID
	})
	return questions
}

func (s *Storage) optionsForQuestionLocked(questionID model.QuestionID) []*model.QuestionOption {
	options := make([]*model.QuestionOption, 0)
	for _, option := range s.options {
		if option.QuestionID == questionID {
			o := *option
			options = append(options, &o)
		}
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].ID < options[j].ID
	})
	return options
}

func (s *Storage) UpdateQuestion(ctx context.Context, question *model.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.questions[question.ID]
	if !ok {
		return model.ErrQuestionNotFound
	}
	existing.FlagID = question.FlagID
	existing.Text = question.Text
	existing.Type = question.Type
	return nil
}

func (s *Storage) DeleteQuestions(ctx context.Context, runID model.RunID, ids []model.QuestionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		question, ok := s.questions[id]
		if !ok || question.RunID != runID {
			continue
		}
		for oid, option := range s.options {
			if option.QuestionID == id {
				delete(s.options, oid)
			}
		}
		delete(s.questions, id)
		deleted++
	}
	return deleted, nil
}

// Question option operations

func (s *Storage) SaveOption(ctx context.Context, option *model.QuestionOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[option.QuestionID]; !ok {
		return model.ErrQuestionNotFound
	}
	o := *option
	s.options[o.ID] = &o
	return nil
}

func (s *Storage) GetOption(ctx context.Context, id model.OptionID) (*model.QuestionOption, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	option, ok := s.options[id]
	if !ok {
		return nil, model.ErrOptionNotFound
	}
	o := *option
	return &o, nil
}

func (s *Storage) UpdateOption(ctx context.Context, option *model.QuestionOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.options[option.ID]
	if !ok {
		return model.ErrOptionNotFound
	}
	existing.Text = option.Text
	existing.Correct = option.Correct
	return nil
}

func (s *Storage) DeleteOptions(ctx context.Context, questionID model.QuestionID, ids []model.OptionID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for _, id := range ids {
		option, ok := s.options[id]
		if !ok || option.QuestionID != questionID {
			continue
		}
		delete(s.options, id)
		deleted++
	}
	return deleted, nil
}

// History operations

func (s *Storage) StartHistory(ctx context.Context, history *model.History) (*model.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[history.RunID]; !ok {
		return nil, model.ErrRunNotFound
	}
	for _, h := range s.histories {
		if h.ActorID == history.ActorID && h.RunID == history.RunID && h.EndedAt == nil {
			return nil, model.ErrHistoryActive
		}
	}
	h := *history
	s.histories[h.ID] = &h
	for _, flag := range s.flagsForRunLocked(history.RunID) {
		hf := model.NewHistoryFlag(h.ID, flag)
		s.historyFlags[hf.ID] = hf
	}
	return s.getHistoryLocked(h.ID)
}

func (s *Storage) EndHistory(ctx context.Context, id model.HistoryID, endedAt time.Time) (*model.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.histories[id]
	if !ok {
		return nil, model.ErrHistoryNotFound
	}
	if history.EndedAt != nil {
		return nil, model.ErrHistoryEnded
	}
	t := endedAt
	history.EndedAt = &t
	history.UpdatedAt = endedAt
	return s.getHistoryLocked(id)
}

func (s *Storage) MarkHistoryFlag(ctx context.Context, historyID model.HistoryID, flagID model.FlagID, reachedAt time.Time, points int, distance *float64) (*model.HistoryFlag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.histories[historyID]
	if !ok {
		return nil, model.ErrHistoryNotFound
	}
	for _, hf := range s.historyFlags {
		if hf.HistoryID == historyID && hf.FlagID == flagID {
			if hf.ReachedAt == nil {
				t := reachedAt
				hf.ReachedAt = &t
			}
			p := points
			hf.Points = &p
			hf.Distance = distance
			history.UpdatedAt = reachedAt
			out := *hf
			return &out, nil
		}
	}
	return nil, model.ErrHistoryFlagNotFound
}

func (s *Storage) GetHistory(ctx context.Context, id model.HistoryID) (*model.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getHistoryLocked(id)
}

// getHistoryLocked returns a copy of the history with its run and
// flag snapshots attached. Callers must hold at least a read lock.
func (s *Storage) getHistoryLocked(id model.HistoryID) (*model.History, error) {
	history, ok := s.histories[id]
	if !ok {
		return nil, model.ErrHistoryNotFound
	}
	h := *history
	if run, ok := s.runs[h.RunID]; ok {
		r := *run
		h.Run = &r
	}
	h.Flags = make([]*model.HistoryFlag, 0)
	for _, hf := range s.historyFlags {
		if hf.HistoryID == id {
			f := *hf
			h.Flags = append(h.Flags, &f)
		}
	}
	sort.Slice(h.Flags, func(i, j int) bool {
		return h.Flags[i].ID < h.Flags[j].ID
	})
	return &h, nil
}

func (s *Storage) ListHistories(ctx context.Context, actorID string) ([]*model.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	histories := make([]*model.History, 0)
	for id, history := range s.histories {
		if history.ActorID == actorID {
			h, err := s.getHistoryLocked(id)
			if err != nil {
				return nil, err
			}
			histories = append(histories, h)
		}
	}
	sort.Slice(histories, func(i, j int) bool {
		if histories[i].StartedAt.Equal(histories[j].StartedAt) {
			return histories[i].ID < histories[j].ID
		}
		return histories[i].StartedAt.Before(histories[j].StartedAt)
	})
	return histories, nil
}

func (s *Storage) DeleteHistory(ctx context.Context, id model.HistoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.histories[id]; !ok {
		return model.ErrHistoryNotFound
	}
	for hfid, hf := range s.historyFlags {
		if hf.HistoryID == id {
			delete(s.historyFlags, hfid)
		}
	}
	delete(s.histories, id)
	return nil
}
