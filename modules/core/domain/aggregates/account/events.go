package account

type CreatedEvent struct {
	Result Account
}

type UpdatedEvent struct {
	Result  Account
	Changed []Field
}

type DeletedEvent struct {
	Email string
}

func NewCreatedEvent(result Account) *CreatedEvent {
	return &CreatedEvent{Result: result}
}

func NewUpdatedEvent(result Account, changed []Field) *UpdatedEvent {
	return &UpdatedEvent{Result: result, Changed: changed}
}

func NewDeletedEvent(email string) *DeletedEvent {
	return &DeletedEvent{Email: email}
}
