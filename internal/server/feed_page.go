package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const feedPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Live Feed · FraudSight</title>
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <link rel="preconnect" href="https://fonts.googleapis.com">
    <link rel="preconnect" href="https://fonts.gstatic.com" crossorigin>
    <link href="https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600&family=JetBrains+Mono:wght@400;500&display=swap" rel="stylesheet">
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        :root {
            --bg: #09090b; --bg-subtle: #18181b; --border: #27272a;
            --text: #fafafa; --text-secondary: #a1a1aa; --text-tertiary: #52525b;
            --accent: #3b82f6; --red: #ef4444; --amber: #f59e0b; --green: #22c55e;
        }
        body {
            font-family: 'Inter', -apple-system, sans-serif;
            background: var(--bg); color: var(--text);
            min-height: 100vh; font-size: 14px;
            -webkit-font-smoothing: antialiased;
        }
        .mono { font-family: 'JetBrains Mono', monospace; }
        .container { max-width: 800px; margin: 0 auto; padding: 0 24px; }
        header {
            border-bottom: 1px solid var(--border); padding: 16px 0;
            position: sticky; top: 0; background: var(--bg); z-index: 100;
        }
        .header-inner { display: flex; justify-content: space-between; align-items: center; }
        .logo { display: flex; align-items: center; gap: 10px; text-decoration: none; color: var(--text); }
        .logo-mark { width: 24px; height: 24px; background: var(--accent); border-radius: 6px; }
        .logo-text { font-weight: 600; font-size: 15px; }
        nav { display: flex; gap: 32px; }
        nav a { color: var(--text-secondary); text-decoration: none; font-size: 13px; transition: color 0.15s; }
        nav a:hover, nav a.active { color: var(--text); }

        .feed-header {
            padding: 48px 0 24px;
            display: flex; justify-content: space-between; align-items: flex-end;
            border-bottom: 1px solid var(--border);
        }
        .feed-title { font-size: 24px; font-weight: 600; margin-bottom: 4px; }
        .feed-desc { color: var(--text-secondary); }
        .live-badge {
            display: flex; align-items: center; gap: 8px;
            background: var(--bg-subtle); border: 1px solid var(--border);
            padding: 8px 14px; border-radius: 20px; font-size: 13px; color: var(--text-secondary);
        }
        .live-dot {
            width: 8px; height: 8px; background: var(--green); border-radius: 50%;
            animation: pulse 2s ease-in-out infinite;
        }
        .live-dot.down { background: var(--red); animation: none; }
        @keyframes pulse { 0%, 100% { opacity: 1; } 50% { opacity: 0.4; } }

        .pred-list { padding: 0; }
        .pred {
            display: grid; grid-template-columns: 1fr auto;
            gap: 16px; padding: 20px 0; border-bottom: 1px solid var(--border);
            align-items: start;
        }
        .pred.new { animation: slideIn 0.3s ease-out; }
        @keyframes slideIn { from { opacity: 0; transform: translateY(-8px); } to { opacity: 1; transform: translateY(0); } }

        .pred-country {
            background: var(--bg-subtle); padding: 6px 12px; border-radius: 6px;
            font-weight: 500; font-size: 14px; display: inline-block; margin-bottom: 8px;
        }
        .pred-verdict { color: var(--text-secondary); font-size: 13px; display: flex; align-items: center; gap: 8px; }
        .tier {
            border: 1px solid var(--border); padding: 2px 8px; border-radius: 4px;
            font-size: 11px; text-transform: uppercase;
        }
        .tier.High { color: var(--red); border-color: var(--red); }
        .tier.Moderate { color: var(--amber); border-color: var(--amber); }
        .tier.Low { color: var(--green); border-color: var(--green); }
        .pred-right { text-align: right; }
        .pred-prob { font-size: 18px; font-weight: 600; }
        .pred-prob.fraud { color: var(--red); }
        .pred-prob.legit { color: var(--green); }
        .pred-time { font-size: 12px; color: var(--text-tertiary); margin-top: 4px; }

        .empty { text-align: center; padding: 80px 24px; color: var(--text-tertiary); }

        footer { border-top: 1px solid var(--border); padding: 24px 0; margin-top: 48px; text-align: center; color: var(--text-tertiary); font-size: 13px; }
        footer a { color: var(--text-secondary); text-decoration: none; margin: 0 12px; }
    </style>
</head>
<body>
    <header><div class="container header-inner">
        <a href="/" class="logo"><div class="logo-mark"></div><span class="logo-text">FraudSight</span></a>
        <nav>
            <a href="/">Dashboard</a>
            <a href="/feed" class="active">Live Feed</a>
        </nav>
    </div></header>
    <main class="container">
        <div class="feed-header">
            <div>
                <h1 class="feed-title">Prediction Feed</h1>
                <p class="feed-desc">Scored transactions as they arrive</p>
            </div>
            <div class="live-badge"><span class="live-dot" id="live-dot"></span> <span id="live-label">Connecting</span></div>
        </div>
        <div class="pred-list" id="feed"><div class="empty">Waiting for predictions...<br>Score a transaction from the dashboard to see it here.</div></div>
    </main>
    <footer><div class="container"><a href="/">Dashboard</a><a href="/api/health">API health</a></div></footer>
    <script>
        const maxItems = 50;
        let empty = true;

        function addPrediction(data) {
            const feed = document.getElementById('feed');
            if (empty) { feed.innerHTML = ''; empty = false; }

            const fraud = data.fraud_prediction === 1;
            const el = document.createElement('div');
            el.className = 'pred new';
            el.innerHTML =
                '<div>'+
                    '<span class="pred-country">'+data.transaction_country+'</span>'+
                    '<div class="pred-verdict">'+
                        '<span class="tier '+data.risk_level+'">'+data.risk_level+'</span>'+
                        '<span class="mono">'+parseFloat(data.amount).toFixed(2)+'</span>'+
                        (fraud ? 'flagged as fraud' : 'looks legitimate')+
                    '</div>'+
                '</div>'+
                '<div class="pred-right">'+
                    '<div class="pred-prob '+(fraud ? 'fraud' : 'legit')+' mono">'+(data.fraud_probability*100).toFixed(1)+'%</div>'+
                    '<div class="pred-time">'+new Date().toLocaleTimeString()+'</div>'+
                '</div>';
            feed.prepend(el);
            while (feed.children.length > maxItems) feed.removeChild(feed.lastChild);
        }

        function setLive(on) {
            document.getElementById('live-dot').className = 'live-dot' + (on ? '' : ' down');
            document.getElementById('live-label').textContent = on ? 'Live' : 'Reconnecting';
        }

        function connect() {
            const proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
            const ws = new WebSocket(proto + '//' + location.host + '/ws');
            ws.onopen = () => {
                setLive(true);
                ws.send(JSON.stringify({eventTypes: ['prediction']}));
            };
            ws.onmessage = msg => {
                const event = JSON.parse(msg.data);
                if (event.type === 'prediction') addPrediction(event.data);
            };
            ws.onclose = () => { setLive(false); setTimeout(connect, 3000); };
        }

        connect();
    </script>
</body>
</html>`

func feedPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, feedPageHTML)
}
