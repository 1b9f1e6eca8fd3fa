package models

// start.gg GraphQL payloads.

type StartGGEvent struct {
	ID    PolymorphicID        `json:"id"`
	Name  string               `json:"name"`
	Slug  string               `json:"slug,omitempty"`
	State string               `json:"state,omitempty"`
	Sets  StartGGSetConnection `json:"sets"`
}

type StartGGSetConnection struct {
	PageInfo StartGGPageInfo `json:"pageInfo"`
	Nodes    []StartGGSet    `json:"nodes"`
}

type StartGGPageInfo struct {
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
	Page       int    `json:"page"`
	PerPage    int    `json:"perPage"`
	SortBy     string `json:"sortBy,omitempty"`
}

// StartGGSetState is the integer set state start.gg reports.
type StartGGSetState int

const (
	StartGGSetUnknown StartGGSetState = iota
	StartGGSetPending
	StartGGSetOpen
	StartGGSetComplete
)

type StartGGSet struct {
	ID            PolymorphicID    `json:"id"`
	Round         int64            `json:"round"`
	FullRoundText string           `json:"fullRoundText"`
	State         StartGGSetState  `json:"state"`
	Identifier    string           `json:"identifier,omitempty"`
	Slots         []StartGGSetSlot `json:"slots"`
}

type StartGGSetSlot struct {
	Entrant *StartGGEntrant `json:"entrant"`
}

type StartGGEntrant struct {
	ID   PolymorphicID `json:"id"`
	Name string        `json:"name"`
}

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

// StartGGReportBracketSet holds the variables of the reportBracketSet mutation.
type StartGGReportBracketSet struct {
	SetID    PolymorphicID     `json:"setId"`
	WinnerID PolymorphicID     `json:"winnerId"`
	GameData []StartGGGameData `json:"gameData"`
}

type StartGGGameData struct {
	WinnerID PolymorphicID `json:"winnerId"`
	GameNum  int           `json:"gameNum"`
}
