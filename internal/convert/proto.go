// Package convert maps account payloads to and from google.protobuf.Struct
// messages carried by the gRPC API.
package convert

import (
	"google.golang.org/protobuf/types/known/structpb"
)

// Field names shared with the HTTP JSON bodies.
const (
	FieldUsername       = "username"
	FieldPassword       = "password"
	FieldEncryptedVault = "encryptedVault"
	FieldSuccess        = "success"
)

// Request is the decoded form of a Signup, Login or UpdateVault message.
// Unused fields stay empty.
type Request struct {
	Username       string
	Password       string
	EncryptedVault string
}

// str returns the string value of name, or "" when it is absent or not a string.
func str(in *structpb.Struct, name string) string {
	v, ok := in.GetFields()[name]
	if !ok {
		return ""
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return ""
	}
	return s.StringValue
}

// FromProtoRequest decodes a request message. A nil message decodes to a zero Request.
func FromProtoRequest(in *structpb.Struct) Request {
	return Request{
		Username:       str(in, FieldUsername),
		Password:       str(in, FieldPassword),
		EncryptedVault: str(in, FieldEncryptedVault),
	}
}

// ToProtoRequest encodes r, omitting empty fields.
func ToProtoRequest(r Request) *structpb.Struct {
	out := &structpb.Struct{Fields: map[string]*structpb.Value{}}
	put := func(name, v string) {
		if v != "" {
			out.Fields[name] = structpb.NewStringValue(v)
		}
	}
	put(FieldUsername, r.Username)
	put(FieldPassword, r.Password)
	put(FieldEncryptedVault, r.EncryptedVault)
	return out
}

// ToProtoSuccess builds the {"success": true} acknowledgement.
func ToProtoSuccess() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldSuccess: structpb.NewBoolValue(true),
	}}
}

// FromProtoSuccess reports whether in is a positive acknowledgement.
func FromProtoSuccess(in *structpb.Struct) bool {
	return in.GetFields()[FieldSuccess].GetBoolValue()
}

// ToProtoVault builds the {"encryptedVault": vault} login response.
func ToProtoVault(vault string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		FieldEncryptedVault: structpb.NewStringValue(vault),
	}}
}

// FromProtoVault extracts the vault from a login response.
func FromProtoVault(in *structpb.Struct) string {
	return str(in, FieldEncryptedVault)
}
