// Package statestore provides server-side stores for OAuth anti-forgery state.
//
// The cookie Jar from package cookie keeps the state in the browser. The stores
// here keep it on the server instead, which lets several instances share one
// callback URL (Redis) or keeps tests free of HTTP plumbing (Memory).
//
// A server-side store is shared by all clients, so it must be scoped before it
// is handed to a driver. Bind issues a random client ID in a cookie and returns
// a view whose keys are prefixed with it:
//
//	client, err := statestore.OpenRedis(ctx, os.Getenv("REDIS_URL"))
//	if err != nil {
//		// handle error
//	}
//	store := statestore.NewRedis(client)
//
//	func redirect(w http.ResponseWriter, r *http.Request) {
//		states, err := statestore.Bind(w, r, cookies, store)
//		if err != nil {
//			// handle error
//		}
//		target, err := driver.RedirectURL(r.Context(), states)
//		// ...
//	}
//
// All stores return an empty string for missing or expired keys, as
// oauth.StateStore requires.
package statestore
