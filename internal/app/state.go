package service

import (
	"errors"
	"fmt"

	"github.com/okian/motionlab/internal/domain/model"
)

// MsgNoVideo is shown when analysis starts without a video.
const MsgNoVideo = "Please upload a video first!"

// Errors returned by Dispatch.
var (
	ErrNoVideo         = errors.New("no video uploaded")
	ErrAnalysisRunning = errors.New("analysis already in progress")
	ErrStaleJob        = errors.New("update for a job that is not running")
	ErrUnknownAction   = errors.New("unknown action")
	ErrInvalidAction   = errors.New("invalid action")
)

// Sections holds which dashboard panels are shown.
type Sections struct {
	Upload   bool `json:"upload"`
	Preview  bool `json:"preview"`
	Analysis bool `json:"analysis"`
	Progress bool `json:"progress"`
	Results  bool `json:"results"`
}

// State is one client's dashboard. Analyzing doubles as the disabled analyze
// trigger.
type State struct {
	Video     *model.VideoHandle `json:"video,omitempty"`
	Type      model.AnalysisType `json:"type"`
	Analyzing bool               `json:"analyzing"`
	JobID     string             `json:"jobId,omitempty"`
	Progress  model.Progress     `json:"progress"`
	Sections  Sections           `json:"sections"`
	HasResult bool               `json:"hasResult"`
	LastError string             `json:"lastError,omitempty"`
}

// InitialState is the dashboard as first loaded.
func InitialState() State {
	return State{
		Type:     model.AnalysisCNN,
		Sections: Sections{Upload: true},
	}
}

// ActionKind names a dashboard action.
type ActionKind string

// Actions.
const (
	ActionSelectVideo    ActionKind = "select_video"
	ActionRemoveVideo    ActionKind = "remove_video"
	ActionSelectType     ActionKind = "select_type"
	ActionStartAnalysis  ActionKind = "start_analysis"
	ActionProgress       ActionKind = "progress"
	ActionAnalysisDone   ActionKind = "analysis_done"
	ActionAnalysisFailed ActionKind = "analysis_failed"
)

// Action is a dashboard event with its payload. Only the fields the kind
// uses are read.
type Action struct {
	Kind     ActionKind
	Video    *model.VideoHandle
	Type     model.AnalysisType
	JobID    string
	Progress model.Progress
	Err      error
}

// Transition computes the next state. It must not mutate its input.
type Transition func(State, Action) (State, error)

var transitions = map[ActionKind]Transition{
	ActionSelectVideo:    selectVideo,
	ActionRemoveVideo:    removeVideo,
	ActionSelectType:     selectType,
	ActionStartAnalysis:  startAnalysis,
	ActionProgress:       progress,
	ActionAnalysisDone:   analysisDone,
	ActionAnalysisFailed: analysisFailed,
}

// Dispatch applies a to s. On error the returned state is s.
func Dispatch(s State, a Action) (State, error) {
	fn, ok := transitions[a.Kind]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	next, err := fn(s, a)
	if err != nil {
		return s, err
	}
	return next, nil
}

func selectVideo(s State, a Action) (State, error) {
	if a.Video == nil {
		return s, fmt.Errorf("%w: select video without a file", ErrInvalidAction)
	}
	v := *a.Video
	s.Video = &v
	s.Sections.Upload = false
	s.Sections.Preview = true
	s.Sections.Analysis = true
	return s, nil
}

func removeVideo(s State, _ Action) (State, error) {
	s.Video = nil
	s.Sections.Upload = true
	s.Sections.Preview = false
	s.Sections.Analysis = false
	s.Sections.Results = false
	return s, nil
}

func selectType(s State, a Action) (State, error) {
	if !a.Type.Valid() {
		return s, fmt.Errorf("%w: %q", model.ErrUnknownAnalysisType, a.Type)
	}
	s.Type = a.Type
	return s, nil
}

func startAnalysis(s State, a Action) (State, error) {
	if s.Video == nil {
		return s, ErrNoVideo
	}
	if s.Analyzing {
		return s, ErrAnalysisRunning
	}
	if a.JobID == "" {
		return s, fmt.Errorf("%w: start without a job id", ErrInvalidAction)
	}
	if a.Type != "" {
		if !a.Type.Valid() {
			return s, fmt.Errorf("%w: %q", model.ErrUnknownAnalysisType, a.Type)
		}
		s.Type = a.Type
	}
	s.Analyzing = true
	s.JobID = a.JobID
	s.Progress = model.Progress{}
	s.LastError = ""
	s.Sections.Progress = true
	s.Sections.Results = false
	return s, nil
}

func progress(s State, a Action) (State, error) {
	if !s.Analyzing || a.JobID != s.JobID {
		return s, ErrStaleJob
	}
	s.Progress = a.Progress
	return s, nil
}

func analysisDone(s State, a Action) (State, error) {
	if !s.Analyzing || a.JobID != s.JobID {
		return s, ErrStaleJob
	}
	s.Analyzing = false
	s.JobID = ""
	s.Sections.Progress = false
	s.Sections.Results = true
	s.HasResult = true
	return s, nil
}

func analysisFailed(s State, a Action) (State, error) {
	if !s.Analyzing || a.JobID != s.JobID {
		return s, ErrStaleJob
	}
	s.Analyzing = false
	s.JobID = ""
	s.Sections.Progress = false
	if a.Err != nil {
		s.LastError = a.Err.Error()
	}
	return s, nil
}
