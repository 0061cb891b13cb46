/*
Copyright © 2019 the STDA authors.
This file is part of STDA.

STDA is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

STDA is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with STDA.  If not, see <http://www.gnu.org/licenses/>.
*/


package stdautil

import (
	"fmt"
	"html/template"

	"github.com/ctessum/gobra"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the commands from a web browser",
	Long: `web starts a local web server presenting every command and its
options as a form, and opens it in the default browser.`,
	Run: func(cmd *cobra.Command, args []string) {
		StartWebServer(Cfg.GetString("web.address"))
	},
	DisableAutoGenTag: true,
}

// silence turns off usage messages for cmd and its descendants.
func silence(cmd *cobra.Command) {
	cmd.SilenceUsage = true
	for _, c := range cmd.Commands() {
		silence(c)
	}
}

const webTmpl = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>STDA</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
	</style>
</head>
<body>
<div class="container">
	<h1>STDA</h1>
	<p>Choose a command and fill in its options below.</p>
	<div>
		{{.}}
	</div>
</div>
</body>
</html>`

// StartWebServer serves the command tree as a web form at address.
func StartWebServer(address string) {
	if err := setConfig(); err != nil {
		Log.Warn(err)
	}
	silence(Root) // We don't want the usage messages in the GUI.

	output := template.Must(template.New("").Parse(webTmpl))
	server := gobra.Server{Root: Root, ServerAddress: address, AllowCORS: false, HTML: output}
	Log.WithField("address", address).Info("server starting")
	open.Run("http://" + address)
	fmt.Printf("If not opened automatically, please visit http://%s\n", address)
	server.Start()
}
