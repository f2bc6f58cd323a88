// Package marketsearch is a Go client for a service marketplace's search API.
//
// It composes the user's query, location and filters into a backend call,
// normalizes the answer, filters and ranks it client-side and returns a
// view model ready to render.
//
// # One-off searches
//
//	client, _ := marketsearch.New(ctx, "https://api.example.com/api")
//	defer client.Close()
//
//	view, _ := client.NewSearch().
//	    Text("plumber").
//	    Near(50.45, 30.52).Km(10).
//	    MaxPrice(200).
//	    SortBy(marketsearch.SortDistance).
//	    Do(ctx)
//
// # Interactive search
//
// A Session debounces keystrokes and applies only the response to the most
// recently issued search:
//
//	s := client.NewSession(ctx, marketsearch.SessionOptions{
//	    OnChange: func(st marketsearch.SessionState) { render(st.View) },
//	})
//	defer s.Close()
//	s.Input("plu")
//	s.Input("plumber")
//
// # Caching
//
// With WithRedis, geocoding answers and the category tree are cached and UI
// preferences are persisted; without it preferences live in memory.
package marketsearch
