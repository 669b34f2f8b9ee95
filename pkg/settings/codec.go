package settings

import (
	"bytes"
	"fmt"
	"io"
)

// Codec reads and writes the settings file, schema revision 2:
//
//	magic:int32 debug:bool
//	hasLogin:bool [login:string<=255]
//	hasCredential:bool [credential:bytes<=4096]
//	profile:varint downloadsDir:string<=4096
//	autoEnter:bool fullScreen:bool ram:varint
type Codec struct {
	Magic    uint32
	MaxRAMMB uint32
}

// NewCodec returns a codec for the given magic, clamping RAM to maxRAMMB on read.
func NewCodec(magic, maxRAMMB uint32) Codec {
	return Codec{Magic: magic, MaxRAMMB: maxRAMMB}
}

// Decode reads a full record. No partial record is returned on error.
func (c Codec) Decode(r io.Reader) (*Record, error) {
	in := newWireReader(r)

	magic, err := in.at("magic").readInt32()
	if err != nil {
		return nil, err
	}
	if uint32(magic) != c.Magic {
		return nil, formatErr(FormatMismatch, "magic",
			fmt.Errorf("got 0x%x, expected 0x%x", uint32(magic), c.Magic))
	}

	var rec Record
	if rec.DebugEnabled, err = in.at("debug").readBool(); err != nil {
		return nil, err
	}

	hasLogin, err := in.at("login").readBool()
	if err != nil {
		return nil, err
	}
	if hasLogin {
		login, err := in.readString(MaxLoginBytes)
		if err != nil {
			return nil, err
		}
		rec.Login = &login
	}

	hasCredential, err := in.at("credential").readBool()
	if err != nil {
		return nil, err
	}
	if hasCredential {
		if rec.Credential, err = in.readBytes(MaxCredentialBytes); err != nil {
			return nil, err
		}
	}

	if rec.ProfileIndex, err = in.at("profile").readLength(0); err != nil {
		return nil, err
	}
	if rec.DownloadsDir, err = in.at("downloadsDir").readString(MaxPathBytes); err != nil {
		return nil, err
	}
	if rec.AutoEnter, err = in.at("autoEnter").readBool(); err != nil {
		return nil, err
	}
	if rec.FullScreen, err = in.at("fullScreen").readBool(); err != nil {
		return nil, err
	}
	ram, err := in.at("ram").readLength(0)
	if err != nil {
		return nil, err
	}
	rec.RAMMB = ClampRAM(int64(ram), c.MaxRAMMB)

	return &rec, nil
}

// Encode writes rec to w. The record is serialized into memory first so a
// validation failure never leaves a partial record in w.
func (c Codec) Encode(w io.Writer, rec *Record) error {
	var buf bytes.Buffer
	out := newWireWriter(&buf)

	out.at("magic").writeInt32(int32(c.Magic))
	out.at("debug").writeBool(rec.DebugEnabled)

	out.at("login").writeBool(rec.Login != nil)
	if rec.Login != nil {
		out.writeString(*rec.Login, MaxLoginBytes)
	}
	out.at("credential").writeBool(rec.Credential != nil)
	if rec.Credential != nil {
		out.writeBytes(rec.Credential, MaxCredentialBytes)
	}
	out.at("profile").writeLength(int(rec.ProfileIndex), 0)
	out.at("downloadsDir").writeString(rec.DownloadsDir, MaxPathBytes)
	out.at("autoEnter").writeBool(rec.AutoEnter)
	out.at("fullScreen").writeBool(rec.FullScreen)
	out.at("ram").writeLength(int(rec.RAMMB), c.MaxRAMMB)

	if out.err != nil {
		return out.err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return formatErr(IOError, "", err)
	}
	return nil
}
