package router

import (
	"context"

	"chat-service/chathub"
	"chat-service/socketio"

	"github.com/zishang520/socket.io/v2/socket"
)

// Socket binds the wire protocol to the hub. Every request-style event
// resolves its acknowledgment exactly once: success payloads carry
// ok:true, failures carry {ok:false, error}.
func Socket(server *socket.Server, hub *chathub.Hub) {
	server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)
		conn := socketio.NewConn(client)

		client.On("join", func(args ...interface{}) {
			payload, ack := splitAck(args)
			result, err := hub.Join(context.Background(), conn, chathub.ParseJoin(payload))
			respond(ack, result, err)
		})

		client.On("message:send", func(args ...interface{}) {
			payload, ack := splitAck(args)
			result, err := hub.Send(context.Background(), conn, chathub.ParseSend(payload))
			respond(ack, result, err)
		})

		client.On("message:react", func(args ...interface{}) {
			payload, ack := splitAck(args)
			err := hub.React(context.Background(), conn, chathub.ParseReact(payload))
			respond(ack, map[string]any{"ok": true}, err)
		})

		client.On("history:request", func(args ...interface{}) {
			payload, ack := splitAck(args)
			count, err := hub.History(context.Background(), conn, intField(payload, "limit"))
			respond(ack, map[string]any{"ok": true, "count": count}, err)
		})

		client.On("message:pull", func(args ...interface{}) {
			payload, ack := splitAck(args)
			err := hub.Pull(context.Background(), conn, stringField(payload, "id"))
			respond(ack, map[string]any{"ok": true}, err)
		})

		client.On("settings:update", func(args ...interface{}) {
			payload, ack := splitAck(args)
			user, err := hub.UpdateSettings(context.Background(), conn, chathub.ParseSettings(payload))
			if err != nil {
				respond(ack, nil, err)
				return
			}
			respond(ack, map[string]any{"ok": true, "user": user}, nil)
		})

		client.On("presence:typing", func(args ...interface{}) {
			payload, _ := splitAck(args)
			isTyping, _ := payload.(bool)
			hub.Typing(conn, isTyping)
		})

		client.On("disconnect", func(...interface{}) {
			hub.Disconnect(conn)
		})
	})
}

// splitAck separates the optional trailing acknowledgment callback from
// the event payload.
func splitAck(args []interface{}) (any, func([]any, error)) {
	if len(args) == 0 {
		return nil, nil
	}
	if ack, ok := args[len(args)-1].(func([]any, error)); ok {
		if len(args) == 1 {
			return nil, ack
		}
		return args[0], ack
	}
	return args[0], nil
}

func respond(ack func([]any, error), result any, err error) {
	if ack == nil {
		return
	}
	if err != nil {
		ack([]any{map[string]any{"ok": false, "error": err.Error()}}, nil)
		return
	}
	ack([]any{result}, nil)
}

func stringField(payload any, key string) string {
	if m, ok := payload.(map[string]any); ok {
		if value, ok := m[key].(string); ok {
			return value
		}
	}
	return ""
}

func intField(payload any, key string) int {
	if m, ok := payload.(map[string]any); ok {
		if value, ok := m[key].(float64); ok {
			return int(value)
		}
	}
	return 0
}
