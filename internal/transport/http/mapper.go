package http

import (
	"encoding/json"

	"github.com/walletchat/walletchat-server/internal/core"
	"github.com/walletchat/walletchat-server/internal/proto"
)

const errCodeBadRequest = "bad_request"

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind:     core.CommandJoinChat,
			Username: join.Username,
			Address:  join.Address,
			ChatType: join.ChatType,
		}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Message == "" {
			return nil, &proto.Error{Code: errCodeBadRequest, Msg: "message is required"}, nil
		}
		return &core.Command{
			Kind:      core.CommandSendMessage,
			Text:      msg.Message,
			Username:  msg.Username,
			Address:   msg.Address,
			ChatType:  msg.ChatType,
			Timestamp: msg.Timestamp,
		}, nil, nil
	case proto.InboundTypeBadge:
		var badge proto.BadgeData
		if err := json.Unmarshal(inbound.Data, &badge); err != nil {
			return nil, nil, err
		}
		// An empty address is a silent no-op in the hub, not an error.
		return &core.Command{
			Kind:     core.CommandBadgeUpdate,
			Address:  badge.Address,
			HasBadge: badge.HasBadge,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventBadgeUpdate:
		return proto.Outbound{
			Type: proto.OutboundTypeBadge,
			Data: proto.EventBadge{
				Address:  event.Address,
				HasBadge: event.HasBadge,
			},
		}
	default:
		msg := event.Message
		chatType := msg.Room.Name()
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: proto.EventMessage{
				ID:        msg.SenderID,
				Message:   msg.Text,
				Username:  msg.Username,
				Timestamp: msg.Timestamp,
				MessageID: msg.ID,
				ChatType:  chatType,
			},
			ChatType: chatType,
		}
	}
}
