// serialize.go - serializes a Command to its ASCII wire form.
package wire

import (
	"bytes"
	"time"

	"github.com/simplex-chat/smp-go/internal/bytefmt"
)

// rsaKeyPrefix is the literal prefix recipient/sender public keys carry on
// the wire ahead of their base64 SPKI encoding.
const rsaKeyPrefix = "rsa:"

// Serialize encodes c into its wire form: the tag, optionally followed by
// a space and arguments, with no trailing newline.
func Serialize(c Command) []byte {
	var buf bytes.Buffer
	buf.WriteString(string(c.Tag()))

	switch v := c.(type) {
	case New:
		buf.WriteByte(' ')
		buf.WriteString(rsaKeyPrefix)
		buf.Write(bytefmt.EncodeBase64(v.RcvPubKey))
	case Key:
		buf.WriteByte(' ')
		buf.WriteString(rsaKeyPrefix)
		buf.Write(bytefmt.EncodeBase64(v.SndPubKey))
	case Send:
		buf.WriteByte(' ')
		buf.Write(bytefmt.Decimal(len(v.MsgBody)))
		buf.WriteByte(' ')
		buf.Write(v.MsgBody)
		buf.WriteByte(' ')
	case Ids:
		buf.WriteByte(' ')
		buf.Write(bytefmt.EncodeBase64(v.RcvId))
		buf.WriteByte(' ')
		buf.Write(bytefmt.EncodeBase64(v.SndId))
	case Msg:
		buf.WriteByte(' ')
		buf.Write(bytefmt.EncodeBase64(v.MsgId))
		buf.WriteByte(' ')
		buf.WriteString(v.Ts.UTC().Format(time.RFC3339Nano))
		buf.WriteByte(' ')
		buf.Write(bytefmt.Decimal(len(v.MsgBody)))
		buf.WriteByte(' ')
		buf.Write(v.MsgBody)
		buf.WriteByte(' ')
	case Err:
		buf.WriteByte(' ')
		if v.Error.Kind == ErrCmd {
			buf.WriteString(string(ErrCmd))
			buf.WriteByte(' ')
			buf.WriteString(string(v.Error.Sub))
		} else {
			buf.WriteString(string(v.Error.Kind))
		}
	// Sub, Ack, Off, Del, Ping, Pong, Ok, End: tag only.
	default:
	}
	return buf.Bytes()
}
