// Package artemis follows an Entropia Universe chat log and turns it into a
// live hunting session.
//
// This package allows you to:
//   - Parse chat log lines into typed hunting events
//   - Follow the log in real time and aggregate a session with running stats
//   - Place kills on the map from location links and name unidentified ones
//   - Group located kills into hunting zones
//
// # Basic Usage
//
// To track a hunt in real time:
//
//	engine, err := artemis.NewEngine(
//	    artemis.WithPlayerName("Jane Doe"),
//	    artemis.WithReferenceFile("reference.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	updates, errs, err := engine.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Stop()
//
//	for {
//	    select {
//	    case u, ok := <-updates:
//	        if !ok {
//	            return
//	        }
//	        fmt.Printf("kills=%d profit=%.2f\n", u.Session.Stats.Kills, u.Session.Stats.Profit)
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// To parse a saved log:
//
//	for ev, err := range artemis.ParseFile(ctx, "chat.log") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(ev.Type())
//	}
//
// To aggregate a saved log into a finished session:
//
//	s, err := artemis.ReplayFile(ctx, "chat.log", artemis.WithCostProfile(profile))
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with MindArk.
package artemis
