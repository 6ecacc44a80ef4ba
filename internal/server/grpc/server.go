// Package grpcserver exposes the SecurePass gRPC API handlers.
package grpcserver

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/securepass/internal/api/securepassv1"
	"github.com/and161185/securepass/internal/convert"
	"github.com/and161185/securepass/internal/errs"
	"github.com/and161185/securepass/internal/service"
)

// Server wires the account service into gRPC handlers.
type Server struct {
	securepassv1.UnimplementedSecurePassServer
	accounts service.AccountService
}

// New constructs a gRPC server with the injected service.
func New(accounts service.AccountService) *Server {
	return &Server{accounts: accounts}
}

// Signup registers a new account with its initial vault.
func (s *Server) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := convert.FromProtoRequest(req)
	if err := s.accounts.Register(ctx, r.Username, r.Password, r.EncryptedVault); err != nil {
		return nil, toStatus(err)
	}
	return convert.ToProtoSuccess(), nil
}

// Login verifies credentials and returns the stored vault.
func (s *Server) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := convert.FromProtoRequest(req)
	vault, err := s.accounts.Authenticate(ctx, r.Username, r.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return convert.ToProtoVault(vault), nil
}

// UpdateVault overwrites the vault of an existing account.
func (s *Server) UpdateVault(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	r := convert.FromProtoRequest(req)
	if err := s.accounts.UpdateVault(ctx, r.Username, r.EncryptedVault); err != nil {
		return nil, toStatus(err)
	}
	return convert.ToProtoSuccess(), nil
}

// toStatus maps service errors to status codes with fixed messages.
// Unrecognized errors become codes.Internal.
func toStatus(err error) error {
	switch {
	case errors.Is(err, errs.ErrMissingFields):
		return status.Error(codes.InvalidArgument, "Missing fields")
	case errors.Is(err, errs.ErrUsernameTaken):
		return status.Error(codes.AlreadyExists, "Username already exists")
	case errors.Is(err, errs.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, "Invalid credentials")
	case errors.Is(err, errs.ErrAccountNotFound):
		return status.Error(codes.NotFound, "User not found")
	default:
		return status.Error(codes.Internal, "Server error")
	}
}
