package version

import (
	"fmt"
	"strconv"
	"time"
)

// Version is the application version. Can be overridden at build time via:
//
//	go build -ldflags "-X hollybrook.dev/keygate/internal/version.Version=1.2.3"
var Version = "1.0"

// RepoURL is the project repository URL. Can be overridden at build time via:
//
//	go build -ldflags "-X hollybrook.dev/keygate/internal/version.RepoURL=https://github.com/yourfork/keygate"
var RepoURL = "https://github.com/hollybrook/keygate"

// Banner prints identifying information about the server.
func Banner() string {
	y := strconv.Itoa(time.Now().Year())
	copyright := "Copyright 2026-" + y + " Hollybrook Software Ltd. All rights reserved."

	return fmt.Sprintf("%s\nKeygate (v%s)\n%s\n", product(), Version, copyright)
}

func product() string {
	// http://patorjk.com/software/taag/#p=display&f=Standard&t=Keygate

	const s = `
  _  __                     _
 | |/ /___ _   _  __ _ __ _| |_ ___
 | ' // _ \ | | |/ _` + "`" + ` |/ _` + "`" + ` | __/ _ \
 | . \  __/ |_| | (_| | (_| | ||  __/
 |_|\_\___|\__, |\__, |\__,_|\__\___|
           |___/ |___/
`
	return s
}
