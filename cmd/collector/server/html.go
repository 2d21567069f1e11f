package server

// indexHTML lists the runs the collector has received trials for.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Metronome Results</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 800px;
            margin: 50px auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .container {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 { color: #333; margin-bottom: 10px; }
        .subtitle { color: #666; margin-bottom: 30px; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #eee; }
        th { color: #666; font-weight: 600; }
        a { color: #4285f4; text-decoration: none; }
        a:hover { text-decoration: underline; }
        .empty { color: #999; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Metronome Results</h1>
        <div class="subtitle">Benchmark runs received by this collector</div>
        {{if .}}
        <table>
            <tr><th>Run</th><th>Trials</th></tr>
            {{range .}}
            <tr><td><a href="/runs/{{.ID}}">{{.ID}}</a></td><td>{{.Trials}}</td></tr>
            {{end}}
        </table>
        {{else}}
        <p class="empty">No runs uploaded yet.</p>
        {{end}}
    </div>
</body>
</html>
`

// runHTML summarizes one run: weighted statistics per benchmark.
const runHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Run {{.ID}}</title>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            max-width: 800px;
            margin: 50px auto;
            padding: 20px;
            background: #f5f5f5;
        }
        .container {
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        h1 { color: #333; margin-bottom: 10px; }
        .subtitle { color: #666; margin-bottom: 30px; font-family: monospace; }
        table { border-collapse: collapse; width: 100%; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #eee; }
        th { color: #666; font-weight: 600; }
        td.num { text-align: right; font-family: monospace; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Benchmark Run</h1>
        <div class="subtitle">{{.ID}}</div>
        <table>
            <tr><th>Benchmark</th><th>Kind</th><th>Trials</th><th>Mean</th><th>Std dev</th><th>Min</th><th>Max</th><th>Unit</th></tr>
            {{range .Benchmarks}}
            <tr>
                <td>{{.Name}}</td>
                <td>{{.Kind}}</td>
                <td class="num">{{.Trials}}</td>
                <td class="num">{{printf "%.2f" .Stats.Mean}}</td>
                <td class="num">{{printf "%.2f" .Stats.StandardDeviation}}</td>
                <td class="num">{{printf "%.2f" .Stats.Min}}</td>
                <td class="num">{{printf "%.2f" .Stats.Max}}</td>
                <td>{{.Stats.Unit}}</td>
            </tr>
            {{end}}
        </table>
    </div>
</body>
</html>
`
