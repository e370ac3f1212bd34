package service

import "context"

// ExpireIdle runs one sweep pass.
func (s *Service) ExpireIdle(ctx context.Context) int { return s.expireIdle(ctx) }
