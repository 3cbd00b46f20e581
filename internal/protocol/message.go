package protocol

import (
	"github.com/rocketscienceinc/gameroom-backend/internal/entity"
)

// Kind tags every message on the wire.
type Kind uint8

const (
	KindJoinRequest Kind = iota + 1
	KindJoinResponse
	KindRoomJoinedEvent
	KindReadyStatusRequest
	KindLobbyInfoUpdate
	KindChatMessage
	KindPlayerNames
	KindMakeMoveRequest
	KindMakeMoveResult
	KindConcedeRequest
	KindGameFinished
	KindReturnToLobby
	KindHeartbeatProbe
	KindHeartbeatResponse
)

func (that Kind) String() string {
	switch that {
	case KindJoinRequest:
		return "join_request"
	case KindJoinResponse:
		return "join_response"
	case KindRoomJoinedEvent:
		return "room_joined_event"
	case KindReadyStatusRequest:
		return "ready_status_request"
	case KindLobbyInfoUpdate:
		return "lobby_info_update"
	case KindChatMessage:
		return "chat_message"
	case KindPlayerNames:
		return "player_names"
	case KindMakeMoveRequest:
		return "make_move_request"
	case KindMakeMoveResult:
		return "make_move_result"
	case KindConcedeRequest:
		return "concede_request"
	case KindGameFinished:
		return "game_finished"
	case KindReturnToLobby:
		return "return_to_lobby"
	case KindHeartbeatProbe:
		return "heartbeat_probe"
	case KindHeartbeatResponse:
		return "heartbeat_response"
	default:
		return "unknown"
	}
}

// JoinResponse results.
const (
	JoinAccepted  = 0
	JoinNameInUse = 1
)

// RoomJoinedEvent rooms.
const (
	RoomLogin = 0
	RoomLobby = 1
	RoomGame  = 2
)

// Message is one unit of the wire catalog. Bodies serialize their fields in
// the declared order.
type Message interface {
	Kind() Kind
	encodeBody(pw *packetWriter)
	decodeBody(pr *packetReader)
}

// JoinRequest - client asks to be admitted under a display name.
type JoinRequest struct {
	Name string
}

func (that *JoinRequest) Kind() Kind                   { return KindJoinRequest }
func (that *JoinRequest) encodeBody(pw *packetWriter) { pw.writeString(that.Name) }
func (that *JoinRequest) decodeBody(pr *packetReader) { that.Name = pr.readString() }

// JoinResponse - server verdict on a JoinRequest.
type JoinResponse struct {
	Result int
}

func (that *JoinResponse) Kind() Kind                  { return KindJoinResponse }
func (that *JoinResponse) encodeBody(pw *packetWriter) { pw.writeInt(that.Result) }
func (that *JoinResponse) decodeBody(pr *packetReader) { that.Result = pr.readInt() }

// RoomJoinedEvent - tells a client which room it just entered.
type RoomJoinedEvent struct {
	Room int
}

func (that *RoomJoinedEvent) Kind() Kind                  { return KindRoomJoinedEvent }
func (that *RoomJoinedEvent) encodeBody(pw *packetWriter) { pw.writeInt(that.Room) }
func (that *RoomJoinedEvent) decodeBody(pr *packetReader) { that.Room = pr.readInt() }

// ReadyStatusRequest - lobby member opts in or out of matchmaking.
type ReadyStatusRequest struct {
	Ready bool
}

func (that *ReadyStatusRequest) Kind() Kind                  { return KindReadyStatusRequest }
func (that *ReadyStatusRequest) encodeBody(pw *packetWriter) { pw.writeBool(that.Ready) }
func (that *ReadyStatusRequest) decodeBody(pr *packetReader) { that.Ready = pr.readBool() }

// LobbyInfoUpdate - lobby occupancy broadcast on every change.
type LobbyInfoUpdate struct {
	MemberCount int
	ReadyCount  int
}

func (that *LobbyInfoUpdate) Kind() Kind { return KindLobbyInfoUpdate }

func (that *LobbyInfoUpdate) encodeBody(pw *packetWriter) {
	pw.writeInt(that.MemberCount)
	pw.writeInt(that.ReadyCount)
}

func (that *LobbyInfoUpdate) decodeBody(pr *packetReader) {
	that.MemberCount = pr.readInt()
	that.ReadyCount = pr.readInt()
}

// ChatMessage - free-form chat line, relayed by the lobby.
type ChatMessage struct {
	Message string
}

func (that *ChatMessage) Kind() Kind                  { return KindChatMessage }
func (that *ChatMessage) encodeBody(pw *packetWriter) { pw.writeString(that.Message) }
func (that *ChatMessage) decodeBody(pr *packetReader) { that.Message = pr.readString() }

// PlayerNames - both participant names, sent once when a match opens.
type PlayerNames struct {
	Player1Name string
	Player2Name string
}

func (that *PlayerNames) Kind() Kind { return KindPlayerNames }

func (that *PlayerNames) encodeBody(pw *packetWriter) {
	pw.writeString(that.Player1Name)
	pw.writeString(that.Player2Name)
}

func (that *PlayerNames) decodeBody(pr *packetReader) {
	that.Player1Name = pr.readString()
	that.Player2Name = pr.readString()
}

// MakeMoveRequest - participant claims a cell (0-8).
type MakeMoveRequest struct {
	Move int
}

func (that *MakeMoveRequest) Kind() Kind                  { return KindMakeMoveRequest }
func (that *MakeMoveRequest) encodeBody(pw *packetWriter) { pw.writeInt(that.Move) }
func (that *MakeMoveRequest) decodeBody(pr *packetReader) { that.Move = pr.readInt() }

// MakeMoveResult - board snapshot after a move; WhoMadeTheMove is 0 for the
// initial snapshot when nobody has moved yet.
type MakeMoveResult struct {
	WhoMadeTheMove int
	Board          entity.Board
}

func (that *MakeMoveResult) Kind() Kind { return KindMakeMoveResult }

func (that *MakeMoveResult) encodeBody(pw *packetWriter) {
	pw.writeInt(that.WhoMadeTheMove)
	pw.writeBoard(that.Board)
}

func (that *MakeMoveResult) decodeBody(pr *packetReader) {
	that.WhoMadeTheMove = pr.readInt()
	that.Board = pr.readBoard()
}

// ConcedeRequest - participant forfeits the match.
type ConcedeRequest struct{}

func (that *ConcedeRequest) Kind() Kind                  { return KindConcedeRequest }
func (that *ConcedeRequest) encodeBody(_ *packetWriter) {}
func (that *ConcedeRequest) decodeBody(_ *packetReader) {}

// GameFinished - tailored end-of-match notice with the final board.
type GameFinished struct {
	Board  entity.Board
	Won    bool
	IsDraw bool
}

func (that *GameFinished) Kind() Kind { return KindGameFinished }

func (that *GameFinished) encodeBody(pw *packetWriter) {
	pw.writeBoard(that.Board)
	pw.writeBool(that.Won)
	pw.writeBool(that.IsDraw)
}

func (that *GameFinished) decodeBody(pr *packetReader) {
	that.Board = pr.readBoard()
	that.Won = pr.readBool()
	that.IsDraw = pr.readBool()
}

// ReturnToLobby - client asks to go back to the lobby after a finished match.
type ReturnToLobby struct {
	Won bool
}

func (that *ReturnToLobby) Kind() Kind                  { return KindReturnToLobby }
func (that *ReturnToLobby) encodeBody(pw *packetWriter) { pw.writeBool(that.Won) }
func (that *ReturnToLobby) decodeBody(pr *packetReader) { that.Won = pr.readBool() }

// HeartbeatProbe - server liveness probe.
type HeartbeatProbe struct{}

func (that *HeartbeatProbe) Kind() Kind                 { return KindHeartbeatProbe }
func (that *HeartbeatProbe) encodeBody(_ *packetWriter) {}
func (that *HeartbeatProbe) decodeBody(_ *packetReader) {}

// HeartbeatResponse - client liveness answer, consumed by the room layer.
type HeartbeatResponse struct{}

func (that *HeartbeatResponse) Kind() Kind                 { return KindHeartbeatResponse }
func (that *HeartbeatResponse) encodeBody(_ *packetWriter) {}
func (that *HeartbeatResponse) decodeBody(_ *packetReader) {}

func newMessage(kind Kind) Message {
	switch kind {
	case KindJoinRequest:
		return &JoinRequest{}
	case KindJoinResponse:
		return &JoinResponse{}
	case KindRoomJoinedEvent:
		return &RoomJoinedEvent{}
	case KindReadyStatusRequest:
		return &ReadyStatusRequest{}
	case KindLobbyInfoUpdate:
		return &LobbyInfoUpdate{}
	case KindChatMessage:
		return &ChatMessage{}
	case KindPlayerNames:
		return &PlayerNames{}
	case KindMakeMoveRequest:
		return &MakeMoveRequest{}
	case KindMakeMoveResult:
		return &MakeMoveResult{}
	case KindConcedeRequest:
		return &ConcedeRequest{}
	case KindGameFinished:
		return &GameFinished{}
	case KindReturnToLobby:
		return &ReturnToLobby{}
	case KindHeartbeatProbe:
		return &HeartbeatProbe{}
	case KindHeartbeatResponse:
		return &HeartbeatResponse{}
	default:
		return nil
	}
}
