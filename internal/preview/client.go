package preview

// clientScript connects to the reload hub and forwards clicks on cells
// carrying a data-on-click marker to the event endpoint.
const clientScript = `(function() {
  'use strict';
  var delay = 1000;

  function overlay(text) {
    var el = document.getElementById('cells-error');
    if (!text) {
      if (el) el.remove();
      return;
    }
    if (!el) {
      el = document.createElement('pre');
      el.id = 'cells-error';
      el.style.cssText = 'position:fixed;inset:0;margin:0;padding:2em;background:#1e1e1e;color:#f66;overflow:auto;z-index:99999';
      document.body.appendChild(el);
    }
    el.textContent = text;
  }

  function connect() {
    var proto = location.protocol === 'https:' ? 'wss:' : 'ws:';
    var ws = new WebSocket(proto + '//' + location.host + '/_cells/reload');
    ws.onopen = function() { delay = 1000; };
    ws.onmessage = function(e) {
      var msg;
      try { msg = JSON.parse(e.data); } catch (err) { return; }
      if (msg.type === 'reload') location.reload();
      else if (msg.type === 'error') overlay(msg.error);
      else if (msg.type === 'clear') overlay('');
    };
    ws.onclose = function() {
      setTimeout(function() { delay = Math.min(delay * 2, 30000); connect(); }, delay);
    };
    ws.onerror = function() { ws.close(); };
  }

  document.addEventListener('click', function(e) {
    var el = e.target.closest('[data-on-click][data-cell-id]');
    if (!el) return;
    var id = encodeURIComponent(el.getAttribute('data-cell-id'));
    fetch('/_cells/event/' + id + '/onclick', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({})
    });
  });

  if (window.CELLS_RELOAD) connect();
})();`
