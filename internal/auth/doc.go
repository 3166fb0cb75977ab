// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PrepPathway Contributors

// Package auth provides credential authentication primitives for PrepPathway.
//
// # Domain Types
//
// Domain types (Account, Session, PasswordReset) should be created using
// their respective constructors:
//   - NewAccount - creates an Account with a normalized, validated email
//   - NewSession - creates a Session with validated account and expiry
//   - NewPasswordReset - creates a PasswordReset with validated account and expiry
//
// Direct struct initialization bypasses validation and may create invalid state.
// Repository implementations receive pre-validated types from these constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - login, signup, logout, session validation
//   - PasswordResetService - password reset flow
//
// Services are created with New*Service constructors that validate dependencies.
//
// Login rejections are deliberately uniform: unknown email, wrong password,
// passwordless account, and missing input all produce the same external
// signal so account existence cannot be probed. Store outages are a separate
// error class and propagate to callers for alerting.
package auth
