package controller

import (
	"github.com/Akashdeep-Patra/content-manager/internal/content"
	"github.com/Akashdeep-Patra/content-manager/internal/state"
)

// Op names the command a step or result belongs to.
type Op int

const (
	OpInitialize Op = iota
	OpSelect
	OpPage
	OpSearch
	OpOpenCreate
	OpOpenEdit
	OpSubmit
	OpDelete
	OpRefresh
	// OpSync refetches categories and items after an external change.
	OpSync
)

func (o Op) String() string {
	switch o {
	case OpInitialize:
		return "initialize"
	case OpSelect:
		return "select"
	case OpPage:
		return "page"
	case OpSearch:
		return "search"
	case OpOpenCreate:
		return "open-create"
	case OpOpenEdit:
		return "open-edit"
	case OpSubmit:
		return "submit"
	case OpDelete:
		return "delete"
	case OpRefresh:
		return "refresh"
	case OpSync:
		return "sync"
	default:
		return "unknown"
	}
}

// Msg is implemented by the intermediate results of a command. The program
// must hand every Msg back to Controller.Update.
type Msg interface {
	generation() uint64
	operation() Op
}

type step struct {
	gen uint64
	op  Op
}

func (s step) generation() uint64 { return s.gen }
func (s step) operation() Op      { return s.op }

type itemsMsg struct {
	step
	query state.Query
	page  content.ItemPage
	// fallback is set when the selected category vanished; cats is then
	// committed together with the items of the aggregate category.
	fallback bool
	cats     []content.Category
}

type categoriesMsg struct {
	step
	cats []content.Category
}

type schemaMsg struct {
	step
	schema    content.Schema
	editingID string
}

type mutatedMsg struct {
	step
}

type failedMsg struct {
	step
	err error
}

// ── Messages for the presentation ───────────────────────────────────────────

// DoneMsg reports a command whose last step committed. Detail is a short
// human readable summary, empty for commands that need none.
type DoneMsg struct {
	Op     Op
	Detail string
}

// FailedMsg reports a command that aborted. The last committed snapshot is
// still current.
type FailedMsg struct {
	Op  Op
	Err error
}

func (m FailedMsg) Error() string { return m.Op.String() + ": " + m.Err.Error() }

// ModalOpenedMsg is sent when the form becomes visible.
type ModalOpenedMsg struct {
	Schema content.Schema
	// Item is the edited item; zero for a create form.
	Item    content.Item
	Editing bool
}
