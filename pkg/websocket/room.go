package websocket

// Room is an entry in the Hub's in-memory index: the set of live
// connections bound to one durable room. Callers hold the Hub lock.
type Room struct {
	ID      string
	Clients map[string]*Client
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		Clients: make(map[string]*Client),
	}
}

// broadcast sends to every client in the room except senderID. Pass an
// empty senderID to reach everyone. A client with a full send buffer
// misses the message rather than blocking the room.
func (r *Room) broadcast(senderID string, message []byte) {
	for id, client := range r.Clients {
		if id == senderID {
			continue
		}
		select {
		case client.Send <- message:
		default:
		}
	}
}
