package services

import (
	"chat-core/contract"
	"chat-core/domain"
	"chat-core/domain/event"
	"chat-core/errors"
	"chat-core/infrastructure/storage"
	"chat-core/moderation"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var validate = validator.New()

type IChatService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) (event.ChatMessagePayload, error)
	ReadMessages(ctx context.Context, cmd domain.ReadMessagesCommand) (event.MessagesRead, error)
	CreateGroupRoom(ctx context.Context, cmd domain.CreateGroupRoomCommand) (domain.Room, error)
	History(ctx context.Context, cmd domain.HistoryCommand) ([]domain.MessageView, *string, error)
	Search(ctx context.Context, cmd domain.SearchCommand) ([]storage.SearchHit, uint64, error)
	Connect(connectionID, userID string, rooms []domain.RoomID, sink contract.EventSink) error
	Disconnect(connectionID string)
}

// SessionPort is the slice of the orchestrator the service needs: publishing
// persisted events and wiring live connections.
type SessionPort interface {
	contract.IPublisher
	Subscribe(connectionID string, channel domain.Channel, sink contract.EventSink)
	DropConnection(connectionID string)
}

// ChatService validates and persists chat operations, then hands the
// resulting events to the fanout pipeline. Persistence is synchronous; fanout
// is not, and its failures never travel back through here.
type ChatService struct {
	log              *slog.Logger
	rooms            storage.IRoomRepository
	messages         storage.IMessageRepository
	index            storage.IIndexRepository
	directory        contract.IUserDirectory
	moderator        *moderation.Moderator
	sessions         SessionPort
	maxContentLength int
}

func NewChatService(
	log *slog.Logger,
	rooms storage.IRoomRepository,
	messages storage.IMessageRepository,
	index storage.IIndexRepository,
	directory contract.IUserDirectory,
	moderator *moderation.Moderator,
	sessions SessionPort,
	maxContentLength int,
) *ChatService {
	return &ChatService{
		log:              log,
		rooms:            rooms,
		messages:         messages,
		index:            index,
		directory:        directory,
		moderator:        moderator,
		sessions:         sessions,
		maxContentLength: maxContentLength,
	}
}

// Send resolves the target room, persists the message, publishes it for
// fanout, and returns the payload carrying the caller's correlation id.
func (s *ChatService) Send(_ context.Context, cmd domain.SendMessageCommand) (event.ChatMessagePayload, error) {
	if cmd.Content == "" {
		return event.ChatMessagePayload{}, errors.ErrEmptyContent
	}
	if err := validate.Struct(cmd); err != nil {
		return event.ChatMessagePayload{}, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	if s.maxContentLength > 0 && len(cmd.Content) > s.maxContentLength {
		return event.ChatMessagePayload{}, fmt.Errorf("%w: content exceeds %d bytes",
			errors.ErrInvalidCommand, s.maxContentLength)
	}

	room, err := s.resolveRoom(cmd)
	if err != nil {
		return event.ChatMessagePayload{}, err
	}

	content := s.moderator.Censor(cmd.Content)

	message, err := s.messages.Append(room.ID, cmd.SenderID, content, cmd.Anonymous)
	if err != nil {
		return event.ChatMessagePayload{}, err
	}

	payload := event.ChatMessagePayload{
		Message:   message.View(),
		RoomID:    room.ID,
		RequestID: cmd.RequestID,
		SenderID:  cmd.SenderID,
	}
	s.sessions.Publish(payload)

	s.log.Debug("Message persisted and published",
		"room_id", room.ID, "message_id", message.ID)
	return payload, nil
}

// resolveRoom picks the explicit room when a room id is given, verifying the
// sender belongs to it, and otherwise resolves or lazily creates the DIRECT
// room for the (sender, recipient) pair.
func (s *ChatService) resolveRoom(cmd domain.SendMessageCommand) (domain.Room, error) {
	if cmd.RoomID != "" {
		room, err := s.rooms.GetRoom(cmd.RoomID)
		if err != nil {
			return domain.Room{}, err
		}
		if !room.IsParticipant(cmd.SenderID) {
			return domain.Room{}, errors.ErrForbidden
		}
		return room, nil
	}

	exists, err := s.directory.Exists(cmd.RecipientID)
	if err != nil {
		return domain.Room{}, err
	}
	if !exists {
		return domain.Room{}, errors.ErrUnknownUser
	}
	return s.rooms.ResolveDirectRoom(cmd.SenderID, cmd.RecipientID)
}

// ReadMessages records read receipts for the reader. Ids unknown to the room
// are skipped silently so re-marking stays idempotent.
func (s *ChatService) ReadMessages(_ context.Context, cmd domain.ReadMessagesCommand) (event.MessagesRead, error) {
	if err := validate.Struct(cmd); err != nil {
		return event.MessagesRead{}, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}

	isParticipant, err := s.rooms.IsParticipant(cmd.RoomID, cmd.ReaderID)
	if err != nil {
		return event.MessagesRead{}, err
	}
	if !isParticipant {
		return event.MessagesRead{}, errors.ErrForbidden
	}

	updated, err := s.messages.MarkRead(cmd.RoomID, cmd.MessageIDs, cmd.ReaderID)
	if err != nil {
		return event.MessagesRead{}, err
	}

	receipt := event.MessagesRead{
		RoomID:   cmd.RoomID,
		ReaderID: cmd.ReaderID,
		MessageIDs: lo.Map(updated, func(m domain.Message, _ int) string {
			return m.ID.String()
		}),
	}
	s.sessions.Publish(receipt)
	return receipt, nil
}

func (s *ChatService) CreateGroupRoom(_ context.Context, cmd domain.CreateGroupRoomCommand) (domain.Room, error) {
	if err := validate.Struct(cmd); err != nil {
		return domain.Room{}, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	for _, participant := range cmd.Participants {
		exists, err := s.directory.Exists(participant)
		if err != nil {
			return domain.Room{}, err
		}
		if !exists {
			return domain.Room{}, fmt.Errorf("%w: %s", errors.ErrUnknownUser, participant)
		}
	}
	return s.rooms.CreateGroupRoom(cmd.CreatorID, cmd.Participants)
}

// History returns one page of a room's messages in assignment order, with a
// cursor resuming after the last one.
func (s *ChatService) History(_ context.Context, cmd domain.HistoryCommand) ([]domain.MessageView, *string, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	if err := s.authorize(cmd.RoomID, cmd.CallerID); err != nil {
		return nil, nil, err
	}

	messages, cursor, err := s.messages.GetMessages(cmd.RoomID, cmd.Cursor)
	if err != nil {
		return nil, nil, err
	}
	views := lo.Map(messages, func(m domain.Message, _ int) domain.MessageView {
		return m.View()
	})
	return views, cursor, nil
}

func (s *ChatService) Search(ctx context.Context, cmd domain.SearchCommand) ([]storage.SearchHit, uint64, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	if err := s.authorize(cmd.RoomID, cmd.CallerID); err != nil {
		return nil, 0, err
	}
	return s.index.SearchPaginated(ctx, cmd.Terms, cmd.RoomID, cmd.Page)
}

// Connect subscribes a live connection to its inbox and error channels plus
// every requested room, after verifying room membership.
func (s *ChatService) Connect(connectionID, userID string, rooms []domain.RoomID, sink contract.EventSink) error {
	for _, roomID := range rooms {
		isParticipant, err := s.rooms.IsParticipant(roomID, userID)
		if err != nil {
			return err
		}
		if !isParticipant {
			return errors.ErrForbidden
		}
	}

	s.sessions.Subscribe(connectionID, domain.InboxChannel(userID), sink)
	s.sessions.Subscribe(connectionID, domain.ErrorChannel(userID), sink)
	for _, roomID := range rooms {
		s.sessions.Subscribe(connectionID, domain.RoomChannel(roomID), sink)
	}
	return nil
}

// Disconnect removes every subscription of a terminated connection.
func (s *ChatService) Disconnect(connectionID string) {
	s.sessions.DropConnection(connectionID)
}

func (s *ChatService) authorize(roomID domain.RoomID, callerID string) error {
	isParticipant, err := s.rooms.IsParticipant(roomID, callerID)
	if err != nil {
		return err
	}
	if !isParticipant {
		return errors.ErrForbidden
	}
	return nil
}
