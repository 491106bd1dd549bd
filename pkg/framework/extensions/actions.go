package extensions

const actionPrefix = "EXTENSIONS_"

// ActionType names an action on the extensions bus.
type ActionType string

const (
	ActionAdd        ActionType = actionPrefix + "ADD"
	ActionDelete     ActionType = actionPrefix + "DELETE"
	ActionUpdate     ActionType = actionPrefix + "UPDATE"
	ActionRequestAdd ActionType = actionPrefix + "REQUEST_ADD"
)

// Action is anything that can be dispatched.
type Action interface {
	Type() ActionType
}

type AddAction struct {
	Entry Entry
}

func (AddAction) Type() ActionType { return ActionAdd }

type DeleteAction struct {
	IDs []string
}

func (DeleteAction) Type() ActionType { return ActionDelete }

type UpdateAction struct {
	ID   string
	Data Patch
}

func (UpdateAction) Type() ActionType { return ActionUpdate }

func Add(entry Entry) AddAction {
	return AddAction{Entry: entry}
}

// Delete accepts one id or several; all are removed in one transition.
func Delete(ids ...string) DeleteAction {
	return DeleteAction{IDs: ids}
}

func Update(id string, data Patch) UpdateAction {
	return UpdateAction{ID: id, Data: data}
}
