package bridge

// Kind names a category of occurrence fired by a Source.
type Kind string

// Handle identifies a single registration on a Source.
type Handle string

// Handler is invoked by a Source with the arguments of an occurrence.
type Handler func(args ...any)

// Source is a push-based notification source.
//
// Firing is synchronous from the Source's point of view: every handler
// subscribed to a kind has returned before the firing call returns.
type Source interface {
	// Subscribe registers h for every future occurrence of kind.
	Subscribe(kind Kind, h Handler) Handle

	// Unsubscribe removes the registration identified by handle.
	// Unknown handles are ignored.
	Unsubscribe(kind Kind, handle Handle)
}

// Roles assigns kinds to the three roles a Bridge understands.
// A kind must appear in at most one role; this is not checked.
type Roles struct {
	Data       []Kind
	Completion []Kind
	Failure    []Kind
}

type subscription struct {
	kind   Kind
	handle Handle
}
