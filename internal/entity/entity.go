package entity

import (
	"time"

	"github.com/google/uuid"
)

// NodeRef points at an element in the page-side node table of one snapshot.
type NodeRef struct {
	Generation int `json:"generation"`
	Index      int `json:"index"`
}

type MarkTarget string

const (
	MarkTargetPage       MarkTarget = "page"
	MarkTargetScreenshot MarkTarget = "screenshot"
)

type MarkResult struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Target    MarkTarget
	URL       string
	Elements  []MarkedElement
	// Labels is the number of distinct overlay numbers drawn.
	Labels int
	// Screenshot holds the annotated PNG of a screenshot-target pass.
	Screenshot     []byte
	ScreenshotPath string
	CreatedAt      time.Time
}

// MarkedElement is one descriptor of a mark pass, one per highlighted rectangle.
type MarkedElement struct {
	Index     int
	Type      string
	Text      string
	AriaLabel string
	Node      NodeRef
	Box       BoundingBox
}

type BoundingBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

type ActionType string

const (
	ActionTypeOpen       ActionType = "open"
	ActionTypeMark       ActionType = "mark"
	ActionTypeUnmark     ActionType = "unmark"
	ActionTypeClick      ActionType = "click"
	ActionTypeType       ActionType = "type"
	ActionTypeScroll     ActionType = "scroll"
	ActionTypeWait       ActionType = "wait"
	ActionTypeGoBack     ActionType = "go_back"
	ActionTypeRestart    ActionType = "restart"
	ActionTypeScreenshot ActionType = "screenshot"
)

type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "up"
	ScrollDown ScrollDirection = "down"
)

type ActionResult struct {
	Action    ActionType
	Index     int
	Success   bool
	Message   string
	Timestamp time.Time
}
