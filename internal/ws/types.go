package ws

const (
	// client - server
	MsgCreateLobby = "create_lobby"
	MsgJoinLobby   = "join_lobby"
	MsgLeaveLobby  = "leave_lobby"
	MsgStartEarly  = "start_early"
	MsgListLobbies = "list_lobbies"
	MsgCategory    = "category"
	MsgRespond     = "respond"
	MsgPass        = "pass"
	MsgConfirmPass = "confirm_pass"
	MsgNextPlayer  = "next_player"
	MsgPing        = "ping"

	// server - client; game events use their own EventName as type
	MsgReady   = "ready"
	MsgPong    = "pong"
	MsgLobbies = "lobbies"
	MsgError   = "error"
)
