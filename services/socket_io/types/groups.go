package socketio_types

// Group names of the socket.io rooms events are fanned out to

// RoomGroup holds every connection that joined the room
func RoomGroup(roomID string) string {
	return roomID
}

// TeamGroup holds the members of a standalone chat team
func TeamGroup(teamID string) string {
	return "team:" + teamID
}

// RoomTeamGroup holds the members of a team inside a room
func RoomTeamGroup(roomID, teamID string) string {
	return roomID + ":" + teamID
}
