package domain

// Command is an inbound room-scoped event. Commands for the same room are
// drained by a single worker, one at a time, in arrival order.
type Command interface {
	RoomID() RoomID
}

// JoinRoomCommand covers both create-room and join-room intents.
type JoinRoomCommand struct {
	Room     RoomID
	ConnID   string
	Username string
}

func (c JoinRoomCommand) RoomID() RoomID { return c.Room }

type SubmitAnswerCommand struct {
	Room   RoomID
	ConnID string
	Answer string
}

func (c SubmitAnswerCommand) RoomID() RoomID { return c.Room }

// TimeUpCommand is sent by clients when their countdown expires.
type TimeUpCommand struct {
	Room   RoomID
	ConnID string
}

func (c TimeUpCommand) RoomID() RoomID { return c.Room }

// AdvanceRoundCommand is enqueued by the round-advance timer itself, so the
// transition to the next question is serialized like any other event.
type AdvanceRoundCommand struct {
	Room RoomID
}

func (c AdvanceRoundCommand) RoomID() RoomID { return c.Room }

// LeaveRoomCommand removes a disconnected player from one room's roster.
// The orchestrator fans it out to every room, matching the original
// "remove from all games" cleanup.
type LeaveRoomCommand struct {
	Room   RoomID
	ConnID string
}

func (c LeaveRoomCommand) RoomID() RoomID { return c.Room }
