// Package testing binds a fake.Handler to the lifecycle of a Go test.
//
// New returns a handler whose expectations are verified when the test
// completes: an expectation that was never consumed, or a call that matched
// nothing, fails the test.
//
// # Basic Usage
//
// Hand the client to the code under test:
//
//	func TestFetchUser(t *testing.T) {
//	    h := fakereqtest.New(t)
//
//	    h.Get("https://api.example.com/users/{id}").
//	        WithJSON(map[string]string{"id": "123", "name": "Test User"})
//
//	    user, err := api.NewClient(h.Client()).FetchUser("123")
//	    // ...
//	}
//
// When the test ends without the call having been made it fails with:
//
//	A GET request to "https://api.example.com/users/{id}" was expected.
//
// # Serving Over HTTP
//
// Code that only accepts a base URL can be pointed at a local server:
//
//	h := fakereqtest.New(t)
//	h.Post("/api/items").WithStatus(201)
//
//	url := h.Start()
//	// ...
//
// The server is closed before verification runs.
//
// # Assertions
//
// Every dispatched call is recorded:
//
//	h.AssertCalled(t, "GET", "/users/{id}")
//	h.AssertCalledTimes(t, "POST", "/api/items", 1)
//	h.AssertNotCalled(t, "DELETE", "/api/items/{id}")
//
//	for _, req := range h.Requests() {
//	    req.AssertHeader(t, "Content-Type", "application/json")
//	    req.AssertJSONField(t, "name", "Test User")
//	}
//
// A plain *fake.Handler can be checked with Verify or served with Server.
package testing
