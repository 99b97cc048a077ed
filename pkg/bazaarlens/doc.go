// Package bazaarlens tracks the player's inventory in The Bazaar by tailing
// its Player.log.
//
// The game writes purchases, sales and periodic "Cards Spawned" blocks that
// re-describe every card on the board. A [Tracker] folds those lines into a
// hand set, a stash set and the current encounter; a [Watcher] drives the
// tracker from a live log file and publishes a [Snapshot] whenever the state
// changes, plus a heartbeat while the file is idle.
//
// # Basic Usage
//
//	items, err := catalog.LoadItems("items_db.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	snaps, errs, err := bazaarlens.Watch(ctx,
//	    bazaarlens.WithItems(items),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    select {
//	    case snap, ok := <-snaps:
//	        if !ok {
//	            return
//	        }
//	        fmt.Printf("hand: %d, stash: %d\n", len(snap.Hand), len(snap.Stash))
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// To inspect a captured log without following it, use [ReplayFile].
//
// # Log Location
//
// The log path is taken from [WithLogPath], then the BAZAARLENS_LOG
// environment variable, then the default Windows location under
// %USERPROFILE%\AppData\LocalLow\Tempo Storm\The Bazaar.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with Tempo Storm.
package bazaarlens
