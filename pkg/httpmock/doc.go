// Package httpmock is an HTTP test double built on the queue store.
//
// Register canned responses for host and path patterns, then hand the
// mock's client or transport to the code under test:
//
//	m := httpmock.New()
//	m.AddResponses("/users", []mock.Response{
//	    mock.Plaintext("first"),
//	    mock.Plaintext("always", mock.WithLifetime(mock.Eternal())),
//	})
//	resp, err := m.Client().Get("https://example.com/users")
//
// Larger setups use the registration tree, where header blocks flow down to
// the responses beneath them:
//
//	m.Register(
//	    httpmock.NewHost("api.example.com",
//	        httpmock.Headers(map[string]string{"X-Env": "test"}, true),
//	        httpmock.NewPath("/v1",
//	            httpmock.NewPath("users", httpmock.Respond(usersJSON)),
//	        ),
//	    ),
//	)
//
// Requests without a queued response are answered according to the
// UnmockedPolicy: a 404 text/plain response, a passthrough to a real
// transport, or ErrNoMock.
//
// The same queues can be served over the network with Handler, which is what
// the httpmock serve command does.
package httpmock
