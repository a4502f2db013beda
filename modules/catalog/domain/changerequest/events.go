package changerequest

// Domain events published on the application event bus.

type SubmittedEvent struct {
	Request *ChangeRequest
}

type ApprovedEvent struct {
	Request *ChangeRequest
}

type RejectedEvent struct {
	Request *ChangeRequest
	Note    string
}
