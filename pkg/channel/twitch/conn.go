package twitch

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"strings"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
	"github.com/google/uuid"

	"avicbot/pkg/bus"
)

const defaultPingPayload = "tmi.twitch.tv"

// Credentials is the login identity presented once at connect time.
type Credentials struct {
	Token   string
	Nick    string
	Channel string
}

// Conn is one logged-in chat connection.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
	log    *slog.Logger
}

// Dial opens a TCP connection to server and performs the login sequence.
func Dial(ctx context.Context, server string, creds Credentials, log *slog.Logger) (*Conn, error) {
	var dialer net.Dialer
	nc, err := dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Err: err}
	}

	conn := newConn(nc, log)
	if err := conn.Login(creds); err != nil {
		_ = nc.Close()
		return nil, err
	}

	return conn, nil
}

func newConn(nc net.Conn, log *slog.Logger) *Conn {
	if log == nil {
		log = slog.Default()
	}

	return &Conn{
		conn:   nc,
		reader: bufio.NewReader(nc),
		log:    log,
	}
}

// Login sends PASS, NICK and JOIN in that order.
func (c *Conn) Login(creds Credentials) error {
	lines := []string{
		"PASS " + creds.Token,
		"NICK " + creds.Nick,
		"JOIN " + creds.Channel,
	}

	for _, line := range lines {
		if err := c.writeLine(line); err != nil {
			return &ConnectionError{Op: "login", Err: err}
		}
	}

	c.log.Debug("Login sequence sent", "nick", creds.Nick, "channel", creds.Channel)
	return nil
}

// ReadLine blocks until the next server line. Keep-alive PINGs are answered
// here and never returned.
func (c *Conn) ReadLine() (string, error) {
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			if isClosed(err) {
				return "", ErrEndOfStream
			}
			return "", &ConnectionError{Op: "read", Err: err}
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		if ping, ok := twitchirc.ParseMessage(line).(*twitchirc.PingMessage); ok {
			if err := c.pong(ping.Message); err != nil {
				return "", err
			}
			continue
		}

		return line, nil
	}
}

// SendLine writes one chat message to channel.
func (c *Conn) SendLine(channel string, text string) error {
	text = strings.Join(strings.Fields(strings.ReplaceAll(text, "\r", " ")), " ")
	if text == "" {
		return nil
	}

	if err := c.writeLine("PRIVMSG " + channel + " :" + text); err != nil {
		return &ConnectionError{Op: "send", Err: err}
	}

	return nil
}

// Close releases the socket; a blocked ReadLine returns ErrEndOfStream.
func (c *Conn) Close() error {
	return c.conn.Close()
}

func (c *Conn) pong(payload string) error {
	if payload == "" {
		payload = defaultPingPayload
	}

	if err := c.writeLine("PONG :" + payload); err != nil {
		return &ConnectionError{Op: "send", Err: err}
	}

	c.log.Debug("Answered keep-alive", "payload", payload)
	return nil
}

func (c *Conn) writeLine(line string) error {
	_, err := io.WriteString(c.conn, line+"\r\n")
	return err
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed)
}

// ParseInbound converts a PRIVMSG line into an inbound message. Every other
// server line reports false.
func ParseInbound(line string) (bus.InboundMessage, bool) {
	msg, ok := twitchirc.ParseMessage(line).(*twitchirc.PrivateMessage)
	if !ok {
		return bus.InboundMessage{}, false
	}

	sender := strings.ToLower(msg.User.Name)
	if sender == "" {
		return bus.InboundMessage{}, false
	}

	display := msg.User.DisplayName
	if display == "" {
		display = msg.User.Name
	}

	return bus.InboundMessage{
		ID:          uuid.NewString(),
		Channel:     "#" + strings.TrimPrefix(msg.Channel, "#"),
		Sender:      sender,
		DisplayName: display,
		Text:        msg.Message,
		Raw:         line,
	}, true
}

// loginRejected reports the NOTICE text Twitch sends when PASS is refused.
func loginRejected(line string) (string, bool) {
	notice, ok := twitchirc.ParseMessage(line).(*twitchirc.NoticeMessage)
	if !ok {
		return "", false
	}

	text := strings.ToLower(notice.Message)
	if strings.Contains(text, "login authentication failed") || strings.Contains(text, "improperly formatted auth") {
		return notice.Message, true
	}

	return "", false
}
