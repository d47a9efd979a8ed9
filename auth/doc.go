// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides password hashing and session tokens.

# Passwords

Passwords are stored as bcrypt hashes:

	hash, err := auth.HashPassword(password)
	err = auth.CheckPassword(hash, attempt)

ValidateNewPassword enforces the rules for a changed password: both entries
match and the password has at least eight characters.

# Session Tokens

Sessions are HS256 JWTs carrying the user id, email, staff flag and a
random token id:

	tokens := auth.NewTokenManager(secret, ttl, auth.NewMemoryRevoker())
	token, claims, err := tokens.Issue(user)
	claims, err = tokens.Parse(ctx, token)

Logging out or changing the password revokes the token id until the token
would have expired anyway. RedisRevoker keeps revocations across restarts;
MemoryRevoker is the fallback when no Redis is configured.

# Usernames

Registration derives a username from the email address. UsernameBase
normalizes it and UsernameCandidate appends a counter on collision.
*/
package auth
