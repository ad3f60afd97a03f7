/*
Package accountsdk is the Go client and wire vocabulary for the accounts service.

# Client vs Session

Client covers the public endpoints and creates a Session on login:

	client := accountsdk.NewClient("http://localhost:8080")

	_, err := client.Register(ctx, accountsdk.RegisterRequest{
		Email:    "user@example.com",
		Password: "correct horse",
	})

	// The verification token arrives by email.
	_, err = client.VerifyEmail(ctx, token)

	session, err := client.Login(ctx, "user@example.com", "correct horse")

Session carries the bearer token for the protected endpoints:

	me, err := session.Current(ctx)
	avatar, err := session.UpdateAvatar(ctx, "me.png", file)
	err = session.Logout(ctx)

# Errors

Every non-2xx response is returned as *APIError with the HTTP status and the
server's message. Request types expose Validate, which the server runs too.
*/
package accountsdk
