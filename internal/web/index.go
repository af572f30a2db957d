package web

// indexHTML is the whole viewer UI: the MJPEG composite plus live
// intensity readings over the websocket.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Aperture Adjustment</title>
<style>
  body { background: #111; color: #ddd; font-family: monospace; margin: 2em; }
  img { max-width: 100%; border: 1px solid #333; }
  #readings { margin-top: 1em; font-size: 1.2em; }
  .value { color: #4f4; }
</style>
</head>
<body>
<h2>Aperture Adjustment</h2>
<img src="/stream" alt="composite stream">
<div id="readings">waiting for readings...</div>
<script>
  const readings = document.getElementById('readings');
  const proto = location.protocol === 'https:' ? 'wss' : 'ws';
  const ws = new WebSocket(proto + '://' + location.host + '/ws/intensity');
  ws.onmessage = (ev) => {
    const msg = JSON.parse(ev.data);
    if (msg.type !== 'intensity') return;
    readings.innerHTML =
      'reference ' + msg.reference.serial + ': <span class="value">' +
      msg.reference.intensity.toFixed(1) + '</span> &nbsp; ' +
      'adjust ' + msg.adjustment.serial + ': <span class="value">' +
      msg.adjustment.intensity.toFixed(1) + '</span>';
  };
  ws.onclose = () => { readings.textContent = 'stream ended'; };
</script>
</body>
</html>
`
