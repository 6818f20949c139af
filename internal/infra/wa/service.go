package wa

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mdp/qrterminal"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	walog "go.mau.fi/whatsmeow/util/log"
	_ "modernc.org/sqlite"
)

// IncomingMessage is the part of a WhatsApp text message the bot reacts to.
type IncomingMessage struct {
	Chat     types.JID
	Sender   types.JID
	PushName string
	Text     string
	IsFromMe bool
}

// IsLID reports whether the sender is a linked ID rather than a phone number.
func (m IncomingMessage) IsLID() bool {
	return m.Sender.Server == "lid" ||
		(m.Sender.Server == types.DefaultUserServer && len(m.Sender.User) > 15)
}

type MessageHandler func(ctx context.Context, msg IncomingMessage)

type Service struct {
	client     *whatsmeow.Client
	dbBasePath string
	log        walog.Logger
	onMessage  MessageHandler
}

func NewService(dbBasePath string, logger walog.Logger) *Service {
	return &Service{
		dbBasePath: dbBasePath,
		log:        logger,
	}
}

func (s *Service) Initialize(ctx context.Context) error {
	// The device store shares the bot's SQLite file; WAL mode persists on the file.
	dbAddress := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", s.dbBasePath)
	container, err := sqlstore.New(ctx, "sqlite", dbAddress, s.log.Sub("Database"))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	devices, err := container.GetAllDevices(ctx)
	if err != nil {
		return fmt.Errorf("failed to get devices: %w", err)
	}

	var device *store.Device
	if len(devices) > 0 {
		device = devices[0]
	} else {
		device = container.NewDevice()
	}

	s.client = whatsmeow.NewClient(device, s.log)
	s.client.AddEventHandler(s.handleEvent)
	return nil
}

func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.onMessage = handler
}

func (s *Service) handleEvent(evt interface{}) {
	v, ok := evt.(*events.Message)
	if !ok || s.onMessage == nil {
		return
	}

	msg := IncomingMessage{
		Chat:     v.Info.Chat,
		Sender:   v.Info.Sender,
		PushName: v.Info.PushName,
		IsFromMe: v.Info.IsFromMe,
		Text:     messageText(v.Message),
	}
	if msg.Text == "" {
		return
	}
	go s.onMessage(context.Background(), msg)
}

func messageText(m *waE2E.Message) string {
	if m == nil {
		return ""
	}
	if m.Conversation != nil {
		return *m.Conversation
	}
	if m.ExtendedTextMessage != nil && m.ExtendedTextMessage.Text != nil {
		return *m.ExtendedTextMessage.Text
	}
	return ""
}

func (s *Service) Connect() error {
	if s.client == nil {
		return fmt.Errorf("client not initialized")
	}
	if s.client.IsConnected() {
		return nil
	}
	return s.client.Connect()
}

func (s *Service) Disconnect() {
	if s.client != nil {
		s.client.Disconnect()
	}
}

func (s *Service) IsLoggedIn() bool {
	return s.client.Store.ID != nil
}

// Login connects the client. A device that is not paired yet is linked with
// a pair code when botPhone is set, otherwise with a QR code on stdout.
func (s *Service) Login(ctx context.Context, botPhone string) error {
	if s.IsLoggedIn() {
		if err := s.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		s.log.Infof("Client is already logged in")
		return nil
	}

	if botPhone == "" {
		s.log.Infof("Not logged in and BOT_PHONE not set, printing QR")
		go s.printQR(ctx)
		return nil
	}

	if err := s.Connect(); err != nil {
		return fmt.Errorf("failed to connect for pairing: %w", err)
	}
	code, err := s.client.PairPhone(ctx, botPhone, true, whatsmeow.PairClientChrome, "Chrome (Linux)")
	if err != nil {
		return fmt.Errorf("failed to generate pair code: %w", err)
	}
	s.log.Infof("PAIR CODE: %s (WhatsApp > Linked Devices > Link with phone number)", code)
	return nil
}

// printQR must get the QR channel before connecting.
func (s *Service) printQR(ctx context.Context) {
	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		s.log.Errorf("Failed to get QR channel: %v", err)
		return
	}
	if err := s.client.Connect(); err != nil {
		s.log.Errorf("Failed to connect for QR: %v", err)
		return
	}
	for evt := range qrChan {
		if evt.Event == "code" {
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, os.Stdout)
		} else {
			s.log.Infof("Login event: %s", evt.Event)
		}
	}
}

// Reply sends text to chat after delay, showing the typing indicator while
// waiting when typing is set.
func (s *Service) Reply(ctx context.Context, chat types.JID, text string, delay time.Duration, typing bool) error {
	if delay > 0 {
		if typing {
			_ = s.client.SendChatPresence(ctx, chat, types.ChatPresenceComposing, types.ChatPresenceMediaText)
		}

		s.log.Debugf("Delaying reply by %s", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		if typing {
			_ = s.client.SendChatPresence(ctx, chat, types.ChatPresencePaused, types.ChatPresenceMediaText)
		}
	}

	_, err := s.client.SendMessage(ctx, chat, &waE2E.Message{Conversation: &text})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
