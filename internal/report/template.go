package report

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Pipeline Analysis Report</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #0f172a;
            color: #e2e8f0;
            padding: 40px;
            line-height: 1.6;
        }
        .container { max-width: 900px; margin: 0 auto; }
        .header { margin-bottom: 32px; }
        .header h1 { color: #f8fafc; font-size: 1.75rem; }
        .header-meta { color: #94a3b8; font-size: 0.9rem; margin-top: 8px; }
        .status-badge {
            display: inline-block;
            background: {{.StatusColor}};
            color: white;
            padding: 6px 16px;
            border-radius: 4px;
            font-weight: 600;
            font-size: 0.85rem;
            margin: 16px 0;
        }
        .commit-box {
            background: #334155;
            padding: 12px 16px;
            border-radius: 6px;
            font-family: monospace;
            font-size: 0.9rem;
            margin-bottom: 24px;
            border-left: 4px solid {{.StatusColor}};
        }
        .metrics { display: flex; gap: 16px; margin-bottom: 32px; }
        .metric {
            background: #1e293b;
            padding: 20px;
            border-radius: 8px;
            text-align: center;
            flex: 1;
        }
        .metric-value { font-size: 2rem; font-weight: 700; }
        .metric-value.green { color: #22c55e; }
        .metric-value.red { color: #ef4444; }
        .metric-value.blue { color: #38bdf8; }
        .metric-label { color: #94a3b8; font-size: 0.85rem; margin-top: 4px; }
        .section {
            background: #1e293b;
            padding: 24px;
            border-radius: 8px;
            margin-bottom: 20px;
        }
        .section h2 { color: #f8fafc; font-size: 1.1rem; margin-bottom: 16px; }
        .section p { color: #cbd5e1; font-size: 0.95rem; }
        .section.warning { border-left: 4px solid #ef4444; }
        .risk-badge {
            display: inline-block;
            background: {{.RiskColor}};
            color: white;
            padding: 4px 12px;
            border-radius: 4px;
            font-weight: 600;
            font-size: 0.8rem;
            margin-left: 8px;
        }
        .bullet-list { list-style: none; margin: 12px 0 0 0; }
        .bullet-list li {
            position: relative;
            padding-left: 20px;
            margin-bottom: 10px;
            color: #cbd5e1;
            font-size: 0.95rem;
        }
        .bullet-list li::before {
            content: "•";
            position: absolute;
            left: 0;
            color: #38bdf8;
            font-weight: bold;
        }
        .failed-list { list-style: none; margin: 12px 0 0 0; }
        .failed-list li {
            background: #334155;
            padding: 12px 16px;
            border-radius: 6px;
            margin-bottom: 12px;
            border-left: 4px solid #ef4444;
        }
        .failed-list li strong { color: #f8fafc; font-size: 0.95rem; }
        .test-detail { color: #94a3b8; font-size: 0.85rem; margin-top: 6px; padding-left: 8px; }
        .success-text { color: #22c55e; font-size: 0.95rem; }
        .muted { color: #64748b; font-size: 0.9rem; font-style: italic; }
        .raw { white-space: pre-wrap; font-family: monospace; font-size: 0.85rem; color: #cbd5e1; }
        table.churn { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
        table.churn td { padding: 4px 8px; border-bottom: 1px solid #334155; }
        table.churn td.add { color: #22c55e; text-align: right; }
        table.churn td.del { color: #ef4444; text-align: right; }
        code {
            background: #334155;
            padding: 2px 6px;
            border-radius: 4px;
            font-family: monospace;
            font-size: 0.85rem;
        }
        .footer {
            margin-top: 32px;
            padding-top: 16px;
            border-top: 1px solid #334155;
            color: #64748b;
            font-size: 0.8rem;
            text-align: center;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>📊 Pipeline Analysis Report</h1>
            <div class="header-meta">Branch: <strong>{{.Branch}}</strong> • Author: <strong>{{.Author}}</strong></div>
        </div>

        <span class="status-badge">{{.StatusText}}</span>

        <div class="commit-box">📝 {{.Commit}}</div>

        <div class="metrics">
            <div class="metric">
                <div class="metric-value blue">{{.Total}}</div>
                <div class="metric-label">Total Tests</div>
            </div>
            <div class="metric">
                <div class="metric-value green">{{.Passed}}</div>
                <div class="metric-label">Passed</div>
            </div>
            <div class="metric">
                <div class="metric-value {{if gt .Failed 0}}red{{else}}green{{end}}">{{.Failed}}</div>
                <div class="metric-label">Failed</div>
            </div>
            {{- if .HasCoverage}}
            <div class="metric">
                <div class="metric-value {{if .CoverageFailed}}red{{else}}green{{end}}">{{.CoveragePct}}%</div>
                <div class="metric-label">Coverage</div>
            </div>
            {{- end}}
        </div>
{{if .Structured}}
        <div class="section">
            <h2>📋 Summary</h2>
            <p>{{.Summary}}</p>
        </div>

        <div class="section">
            <h2>⚠️ Risk Assessment <span class="risk-badge">{{.RiskLevel}}</span></h2>
            {{- if .RiskReasons}}
            <ul class="bullet-list">
                {{- range .RiskReasons}}
                <li>{{.}}</li>
                {{- end}}
            </ul>
            {{- else}}
            <p class="muted">No risk factors identified</p>
            {{- end}}
        </div>
{{else}}
        <div class="section">
            <h2>📋 Analysis</h2>
            <div class="raw">{{.RawAnalysis}}</div>
        </div>
{{end}}
{{- if .CoverageFailed}}
        <div class="section warning">
            <h2>📉 Coverage Below Threshold</h2>
            <p>Line coverage {{.CoveragePct}}% is below the required {{.ThresholdPct}}%.</p>
        </div>
{{end}}
        <div class="section">
            <h2>❌ Failed Tests</h2>
            {{- if .FailedTests}}
            <ul class="failed-list">
                {{- range .FailedTests}}
                <li>
                    <strong>{{.Name}}</strong>
                    <div class="test-detail">📁 {{.Path}}</div>
                    <div class="test-detail">💬 {{.Message}}</div>
                </li>
                {{- end}}
            </ul>
            {{- else if and .HasResults (gt .Failed 0)}}
            <p class="muted">{{.Failed}} failed, failure details unavailable</p>
            {{- else if .HasResults}}
            <p class="success-text">✓ All tests passed successfully</p>
            {{- else}}
            <p class="muted">No test results found</p>
            {{- end}}
            {{- if .FailureAnalysis}}
            <p>{{.FailureAnalysis}}</p>
            {{- end}}
        </div>
{{if .Churn}}
        <div class="section">
            <h2>📝 Changed Lines</h2>
            <table class="churn">
                {{- range .Churn}}
                <tr><td><code>{{.Path}}</code></td><td class="add">+{{.Added}}</td><td class="del">-{{.Deleted}}</td></tr>
                {{- end}}
            </table>
        </div>
{{end}}
{{- if .Structured}}
        <div class="section">
            <h2>🔄 Regression Analysis</h2>
            <p>{{.Regression}}</p>
        </div>

        <div class="section">
            <h2>💡 Recommendations</h2>
            {{- if .Recommendations}}
            <ul class="bullet-list">
                {{- range .Recommendations}}
                <li>{{.}}</li>
                {{- end}}
            </ul>
            {{- else}}
            <p class="muted">No recommendations</p>
            {{- end}}
        </div>

        <div class="section">
            <h2>🔧 Quick Fixes</h2>
            {{- if .QuickFixes}}
            <ul class="bullet-list">
                {{- range .QuickFixes}}
                <li><code>{{.}}</code></li>
                {{- end}}
            </ul>
            {{- else}}
            <p class="muted">No quick fixes suggested</p>
            {{- end}}
        </div>
{{end}}
        <div class="footer">
            Generated: {{.GeneratedAt}}{{if .Model}} • Model: {{.Model}}{{end}}
        </div>
    </div>
</body>
</html>
`
